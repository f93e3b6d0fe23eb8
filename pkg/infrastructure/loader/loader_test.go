package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vsinha/storealloc/pkg/domain/entities"
	"github.com/vsinha/storealloc/pkg/infrastructure/parser"
	testhelpers "github.com/vsinha/storealloc/pkg/infrastructure/testing"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newLoader() *Loader {
	return NewLoader(parser.NewParser(parser.DefaultOptions()), nil)
}

func TestLoader_LoadScenario(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, testhelpers.WriteScenarioFiles(dir))

	sources, err := ResolveScenario(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "priority.csv"), sources.Priority)

	loaded, err := newLoader().LoadAll(context.Background(), sources)
	require.NoError(t, err)

	assert.Len(t, loaded.Stock, 4)
	assert.Equal(t, 1, loaded.StockReport.Discarded[parser.DiscardNonPositiveQuantity])
	assert.Equal(t, 3, loaded.Participation.Len())
	assert.Equal(t, 1, loaded.Priorities.Of("REMERA"))

	require.Len(t, loaded.Notes, 3)
	for _, note := range loaded.Notes {
		assert.Equal(t, parser.Stage, note.Rule)
	}
	assert.Equal(t, "priorities parsed: 2 categories", loaded.Notes[2].Message)
}

func TestLoader_PriorityIsOptional(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, testhelpers.WriteScenarioFiles(dir))
	require.NoError(t, os.Remove(filepath.Join(dir, "priority.csv")))

	sources, err := ResolveScenario(dir)
	require.NoError(t, err)
	assert.Empty(t, sources.Priority)

	loaded, err := newLoader().LoadAll(context.Background(), sources)
	require.NoError(t, err)
	assert.Equal(t, entities.DefaultPriority, loaded.Priorities.Of("REMERA"))
	assert.Contains(t, loaded.Notes[2].Message, "no priority file")
}

func TestLoader_RejectsSwappedInputs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, testhelpers.WriteScenarioFiles(dir))

	_, err := newLoader().LoadAll(context.Background(), Sources{
		Stock:         filepath.Join(dir, "participation.csv"),
		Participation: filepath.Join(dir, "stock.csv"),
	})
	assert.ErrorIs(t, err, parser.ErrWrongTableKind)
}

func TestLoader_MissingInputs(t *testing.T) {
	_, err := ResolveScenario(t.TempDir())
	assert.ErrorIs(t, err, ErrMissingInput)

	_, err = newLoader().LoadAll(context.Background(), Sources{Stock: "stock.csv"})
	assert.ErrorIs(t, err, ErrMissingInput)

	dir := t.TempDir()
	_, err = newLoader().LoadAll(context.Background(), Sources{
		Stock:         filepath.Join(dir, "stock.csv"),
		Participation: filepath.Join(dir, "participation.csv"),
	})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoader_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, testhelpers.WriteScenarioFiles(dir))
	sources, err := ResolveScenario(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = newLoader().LoadAll(ctx, sources)
	assert.ErrorIs(t, err, context.Canceled)
}
