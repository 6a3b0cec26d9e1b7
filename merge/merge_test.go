package merge

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/brunobiangulo/geobench/generator"
	"github.com/brunobiangulo/geobench/tableio"
)

func writeSource(t *testing.T, dir, sub, name string, header []string, rows [][]string) {
	t.Helper()
	require.NoError(t, tableio.WriteCSV(filepath.Join(dir, sub, name), header, rows))
}

func seedResults(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeSource(t, dir, generator.YesNoDir, generator.YesNoFile(generator.Atomic),
		[]string{"place1", "relation", "place2", "triplet", "question", "answer", "transition"},
		[][]string{
			{"London", "north", "Manchester", "London is north Manchester", "Is London north of Manchester?", "Yes", "no_change"},
			{"London", "north", "Manchester", "London is north Manchester", "Is London south of Manchester?", "No", "replace_dir_token"},
			{"Camden", "within", "London", "Camden is within London", "Is Camden within London?", "Yes", "no_change"},
		})
	writeSource(t, dir, generator.MCQDir, generator.MCQFile(generator.Atomic),
		[]string{"place1", "relation", "place2", "triplet", "question", "options", "answer", "option_sources"},
		[][]string{
			{"Leeds", "near", "York", "Leeds is near York", "Which city is near to York?", "A. Hull\nB. Leeds\nC. Hull", "B. Leeds", "hard,correct,random"},
		})

	// dir_top without option_sources or transition columns.
	writeSource(t, dir, generator.MCQDir, generator.MCQFile(generator.DirTop),
		[]string{"place1", "dir", "place2_Y", "top", "place2_Z", "question", "options", "answer"},
		[][]string{
			{"A", "east", "B", "within", "C", "Which city lies east to B and within C?", "A. A\nB. D\nC. E", "A. A"},
		})
	writeSource(t, dir, generator.YesNoDir, generator.YesNoFile(generator.DirTop),
		[]string{"place1", "question", "answer"},
		[][]string{{"A", "Is A east of B and within C?", "Yes"}})
	return dir
}

func TestMergeAssignsFlags(t *testing.T) {
	dir := seedResults(t)

	b, err := New(dir).Merge(context.Background())
	require.NoError(t, err)

	require.Len(t, b.YesNo, 4)
	require.Len(t, b.MCQ, 2)

	require.Equal(t, YesNoRow{
		Question: "Is London north of Manchester?", Answer: "Yes", Transition: "no_change",
		Concept: 1, Flags: Flags{Dir: 1},
	}, b.YesNo[0])
	require.Equal(t, Flags{Top: 1}, b.YesNo[2].Flags)
	require.Equal(t, Flags{Dis: 1}, b.MCQ[0].Flags)

	// Priority order puts dis_dir before dir_top; dis_dir is absent.
	dirTop := b.YesNo[3]
	require.Equal(t, 2, dirTop.Concept)
	require.Equal(t, Flags{Dir: 1, Top: 1}, dirTop.Flags)
	require.Equal(t, Unknown, dirTop.Transition)
	require.Equal(t, Unknown, b.MCQ[1].OptionSources)
	require.Equal(t, "A. A\nB. D\nC. E", b.MCQ[1].Options)

	// Three drivers have neither file.
	require.Len(t, b.Missing, 6)
}

func TestMergeMissingQuestionColumnIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, generator.YesNoDir, generator.YesNoFile(generator.TopDis),
		[]string{"place1", "answer"}, [][]string{{"A", "Yes"}})

	_, err := New(dir).Merge(context.Background())
	require.ErrorIs(t, err, tableio.ErrMissingColumn)
}

func TestMergeEmptyDirectory(t *testing.T) {
	b, err := New(t.TempDir()).Merge(context.Background())
	require.NoError(t, err)
	require.Empty(t, b.YesNo)
	require.Empty(t, b.MCQ)
	require.Len(t, b.Missing, 2*len(Sources))
}

func TestWriteMergedFiles(t *testing.T) {
	dir := seedResults(t)
	b, err := New(dir).Merge(context.Background())
	require.NoError(t, err)
	require.NoError(t, b.Write(dir))

	mcqPath, ynPath := Paths(dir)
	for _, p := range []string{mcqPath, ynPath} {
		_, err := os.Stat(p)
		require.NoError(t, err)
	}

	sheet, err := tableio.NewRegistry().ReadFile(context.Background(), mcqPath)
	require.NoError(t, err)
	require.Equal(t, MCQHeader, sheet.Header)
	require.Equal(t, []string{
		"Which city is near to York?", "A. Hull\nB. Leeds\nC. Hull", "hard,correct,random", "B. Leeds", "1", "0", "1", "0",
	}, sheet.Rows[0])

	sheet, err = tableio.NewRegistry().ReadFile(context.Background(), ynPath)
	require.NoError(t, err)
	require.Equal(t, YesNoHeader, sheet.Header)
	require.Len(t, sheet.Rows, 4)
}

func TestConceptKey(t *testing.T) {
	require.Equal(t, "3:dir+dis+top", ConceptKey(3, Flags{Dir: 1, Dis: 1, Top: 1}))
	require.Equal(t, "1:top", ConceptKey(1, Flags{Top: 1}))
}
