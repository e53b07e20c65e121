package form

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biodexapp/biodex/internal/datastore"
	"github.com/biodexapp/biodex/internal/errors"
	"github.com/biodexapp/biodex/internal/species"
	"github.com/biodexapp/biodex/internal/wikipedia"
)

// fakeStore implements the species operations of datastore.Interface.
type fakeStore struct {
	datastore.Interface

	mu        sync.Mutex
	created   []*datastore.Species
	updates   map[uint]map[string]any
	createErr error
	updateErr error
	block     chan struct{} // when set, CreateSpecies waits on it
}

func newFakeStore() *fakeStore {
	return &fakeStore{updates: map[uint]map[string]any{}}
}

func (f *fakeStore) CreateSpecies(_ context.Context, s *datastore.Species) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	s.ID = uint(len(f.created) + 1)
	f.created = append(f.created, s)
	return nil
}

func (f *fakeStore) UpdateSpecies(_ context.Context, id uint, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates[id] = fields
	return nil
}

// fakeNotifier records toasts in order.
type fakeNotifier struct {
	mu       sync.Mutex
	severity []string
	titles   []string
	messages []string
}

func (f *fakeNotifier) record(severity, title, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.severity = append(f.severity, severity)
	f.titles = append(f.titles, title)
	f.messages = append(f.messages, message)
}

func (f *fakeNotifier) NotifySuccess(title, message string) { f.record("success", title, message) }
func (f *fakeNotifier) NotifyWarning(title, message string) { f.record("warning", title, message) }
func (f *fakeNotifier) NotifyFailure(title, message string) { f.record("failure", title, message) }

type fakeLookup struct {
	result *wikipedia.LookupResult
	err    error
	calls  int
}

func (f *fakeLookup) Lookup(context.Context, string) (*wikipedia.LookupResult, error) {
	f.calls++
	return f.result, f.err
}

func openCreateDialog(t *testing.T, ds datastore.Interface, notifier Notifier, lookup LookupClient) *Dialog {
	t.Helper()
	dialog := NewCreateDialog(ds, notifier, lookup, "user-1")
	require.NoError(t, dialog.Open())
	return dialog
}

func TestDialog_CreateSubmit(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	notifier := &fakeNotifier{}
	dialog := openCreateDialog(t, store, notifier, &fakeLookup{})

	require.NoError(t, dialog.SetField(species.FieldScientificName, "Quercus robur"))
	require.NoError(t, dialog.SetField(species.FieldKingdom, "Plantae"))

	model, err := dialog.Submit(context.Background())
	require.NoError(t, err)
	require.NotNil(t, model)

	// The datastore receives exactly the six normalized fields plus the owner.
	require.Len(t, store.created, 1)
	got := store.created[0]
	assert.Equal(t, "Quercus robur", got.ScientificName)
	assert.Equal(t, "Plantae", got.Kingdom)
	assert.Nil(t, got.CommonName)
	assert.Nil(t, got.TotalPopulation)
	assert.Nil(t, got.Image)
	assert.Nil(t, got.Description)
	assert.Equal(t, "user-1", got.Author)

	assert.Equal(t, []string{"success"}, notifier.severity)
	assert.Contains(t, notifier.messages[0], "Quercus robur")

	// Success closes the dialog and resets to blank defaults.
	assert.Equal(t, StateClosed, dialog.State())
	assert.Equal(t, species.Defaults(), dialog.Fields())
}

func TestDialog_SubmitWithViolationsStaysOpen(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	notifier := &fakeNotifier{}
	dialog := openCreateDialog(t, store, notifier, &fakeLookup{})

	require.NoError(t, dialog.SetField(species.FieldScientificName, "   "))

	_, err := dialog.Submit(context.Background())
	var violations species.FieldErrors
	require.ErrorAs(t, err, &violations)
	assert.Contains(t, violations, species.FieldScientificName)

	assert.Equal(t, StateOpen, dialog.State())
	assert.Empty(t, store.created)
	assert.Empty(t, notifier.severity)
}

func TestDialog_PersistenceFailureKeepsInput(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.updateErr = errors.Newf("duplicate key").Component("datastore").Category(errors.CategoryDatabase).Build()
	notifier := &fakeNotifier{}

	name := "Old name"
	existing := &datastore.Species{
		ID:             7,
		ScientificName: "Quercus robur",
		CommonName:     &name,
		Kingdom:        "Plantae",
		Author:         "user-1",
	}
	dialog := NewUpdateDialog(store, notifier, &fakeLookup{}, existing)
	require.NoError(t, dialog.Open())
	require.NoError(t, dialog.SetField(species.FieldCommonName, "English oak"))

	_, err := dialog.Submit(context.Background())
	require.Error(t, err)

	// The dialog stays open with the attempted edit preserved, and the
	// datastore's message is surfaced verbatim.
	assert.Equal(t, StateOpen, dialog.State())
	assert.Equal(t, "English oak", dialog.Fields().CommonName)
	require.Equal(t, []string{"failure"}, notifier.severity)
	assert.Contains(t, notifier.messages[0], "duplicate key")
}

func TestDialog_UpdateResetsToSavedValues(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	notifier := &fakeNotifier{}

	existing := &datastore.Species{
		ID:             3,
		ScientificName: "Ailuropoda melanoleuca",
		Kingdom:        "Animalia",
		Author:         "user-2",
	}
	dialog := NewUpdateDialog(store, notifier, &fakeLookup{}, existing)
	require.NoError(t, dialog.Open())
	require.NoError(t, dialog.SetField(species.FieldCommonName, "Giant panda"))

	model, err := dialog.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint(3), model.ID)

	fields, ok := store.updates[3]
	require.True(t, ok)
	assert.Len(t, fields, 6)
	assert.NotContains(t, fields, "author")

	// Reopening starts from the just-saved values, not blank defaults.
	require.NoError(t, dialog.Open())
	assert.Equal(t, "Giant panda", dialog.Fields().CommonName)
	assert.Equal(t, "Ailuropoda melanoleuca", dialog.Fields().ScientificName)
}

func TestDialog_DuplicateSubmitGuard(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	store.block = make(chan struct{})
	notifier := &fakeNotifier{}
	dialog := openCreateDialog(t, store, notifier, &fakeLookup{})
	require.NoError(t, dialog.SetField(species.FieldScientificName, "Cavia porcellus"))

	done := make(chan error, 1)
	go func() {
		_, err := dialog.Submit(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool {
		return dialog.State() == StateSubmitting
	}, time.Second, time.Millisecond)

	_, err := dialog.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitInFlight)
	assert.ErrorIs(t, dialog.Close(), ErrSubmitInFlight)

	close(store.block)
	require.NoError(t, <-done)
	assert.Equal(t, StateClosed, dialog.State())
}

func TestDialog_ApplyLookupFillsTwoFields(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	notifier := &fakeNotifier{}
	lookup := &fakeLookup{result: &wikipedia.LookupResult{
		Title:        "Guinea pig",
		Extract:      "The guinea pig is a species of rodent.",
		ThumbnailURL: "https://upload.wikimedia.org/thumb/guinea_pig.jpg",
	}}
	dialog := openCreateDialog(t, store, notifier, lookup)
	require.NoError(t, dialog.SetField(species.FieldScientificName, "Cavia porcellus"))

	require.NoError(t, dialog.ApplyLookup(context.Background(), "guinea pig"))

	fields := dialog.Fields()
	assert.Equal(t, "The guinea pig is a species of rodent.", fields.Description)
	assert.Equal(t, "https://upload.wikimedia.org/thumb/guinea_pig.jpg", fields.Image)
	// Everything outside the two target fields is untouched.
	assert.Equal(t, "Cavia porcellus", fields.ScientificName)

	require.Equal(t, []string{"success"}, notifier.severity)
	assert.Equal(t, "Wikipedia data loaded successfully!", notifier.titles[0])
	assert.Contains(t, notifier.messages[0], "Guinea pig")
}

func TestDialog_ApplyLookupNoMatchWarns(t *testing.T) {
	t.Parallel()
	store := newFakeStore()
	notifier := &fakeNotifier{}
	lookup := &fakeLookup{err: wikipedia.ErrNoMatch}
	dialog := openCreateDialog(t, store, notifier, lookup)
	require.NoError(t, dialog.SetField(species.FieldDescription, "hand-written notes"))

	err := dialog.ApplyLookup(context.Background(), "Giant Panda")
	require.Error(t, err)

	require.Equal(t, []string{"warning"}, notifier.severity)
	assert.Equal(t, "No matching article found.", notifier.titles[0])
	assert.Equal(t, "hand-written notes", dialog.Fields().Description)
}
