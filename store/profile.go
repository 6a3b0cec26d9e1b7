package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/brunobiangulo/geobench/relation"
)

// ProfileDim is the length of a place profile: one slot per relation
// token across all dimensions.
var ProfileDim = profileLen()

func profileLen() int {
	n := 0
	for _, d := range relation.Dimensions {
		n += len(d.Tokens())
	}
	return n
}

// slot maps each token to its profile position.
var slot = func() map[relation.Token]int {
	m := make(map[relation.Token]int)
	for _, d := range relation.Dimensions {
		for _, t := range d.Tokens() {
			m[t] = len(m)
		}
	}
	return m
}()

// Profiles counts, for every subject place, its facts per token and
// L2-normalizes the counts. Places that only appear as objects get no
// profile.
func Profiles(tables ...*relation.Table) map[string][]float32 {
	counts := make(map[string][]float64)
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, f := range t.Facts {
			i, ok := slot[f.Relation]
			if !ok {
				continue
			}
			v, ok := counts[f.Subject]
			if !ok {
				v = make([]float64, ProfileDim)
				counts[f.Subject] = v
			}
			v[i]++
		}
	}

	out := make(map[string][]float32, len(counts))
	for place, v := range counts {
		var norm float64
		for _, x := range v {
			norm += x * x
		}
		norm = math.Sqrt(norm)
		p := make([]float32, len(v))
		for i, x := range v {
			p[i] = float32(x / norm)
		}
		out[place] = p
	}
	return out
}

// UpsertProfiles registers the places and replaces their profile vectors.
// Places are written in sorted order.
func (s *Store) UpsertProfiles(ctx context.Context, profiles map[string][]float32) error {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, name := range names {
			p := profiles[name]
			if len(p) != ProfileDim {
				return fmt.Errorf("profile for %s has %d dims, want %d", name, len(p), ProfileDim)
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO places (name) VALUES (?) ON CONFLICT(name) DO NOTHING", name); err != nil {
				return fmt.Errorf("registering place %s: %w", name, err)
			}
			var id int64
			if err := tx.QueryRowContext(ctx, "SELECT id FROM places WHERE name = ?", name).Scan(&id); err != nil {
				return fmt.Errorf("looking up place %s: %w", name, err)
			}
			if _, err := tx.ExecContext(ctx, "DELETE FROM vec_places WHERE place_id = ?", id); err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO vec_places (place_id, profile) VALUES (?, ?)",
				id, serializeFloat32(p)); err != nil {
				return fmt.Errorf("storing profile for %s: %w", name, err)
			}
		}
		return nil
	})
}

// ErrPlaceNotFound is returned when a place has no stored profile.
var ErrPlaceNotFound = errors.New("geobench: place has no profile")

// SimilarPlaces returns the k places whose relation profiles are closest
// to place's, nearest first. The place itself is excluded.
func (s *Store) SimilarPlaces(ctx context.Context, place string, k int) ([]Neighbor, error) {
	var id int64
	var profile []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT p.id, v.profile FROM places p
		JOIN vec_places v ON v.place_id = p.id
		WHERE p.name = ?
	`, place).Scan(&id, &profile)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPlaceNotFound, place)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT v.place_id, v.distance, p.name
		FROM vec_places v
		JOIN places p ON p.id = v.place_id
		WHERE v.profile MATCH ? AND k = ?
		ORDER BY v.distance
	`, profile, k+1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Neighbor
	for rows.Next() {
		var n Neighbor
		var pid int64
		if err := rows.Scan(&pid, &n.Distance, &n.Place); err != nil {
			return nil, err
		}
		if pid == id {
			continue
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}
