// Package form owns the species dialog lifecycle: an explicit per-dialog
// state machine around field editing, validation, the best-effort lookup
// autofill, and submission to the datastore.
package form

import (
	"context"
	"fmt"
	"sync"

	"github.com/biodexapp/biodex/internal/datastore"
	"github.com/biodexapp/biodex/internal/errors"
	"github.com/biodexapp/biodex/internal/species"
	"github.com/biodexapp/biodex/internal/wikipedia"
)

// State is the lifecycle state of a dialog. Submitting is entered only when
// the record passes full validation, and terminates only on the datastore's
// response.
type State string

const (
	StateClosed     State = "closed"
	StateOpen       State = "open"
	StateSubmitting State = "submitting"
)

// Mode selects between the add and edit flows.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeUpdate Mode = "update"
)

var (
	// ErrNotOpen is returned for edits or submissions against a closed dialog.
	ErrNotOpen = errors.Newf("dialog is not open").Component("form").Category(errors.CategoryState).Build()

	// ErrSubmitInFlight guards against duplicate submissions while a
	// persistence call is still outstanding.
	ErrSubmitInFlight = errors.Newf("a submission is already in flight").Component("form").Category(errors.CategoryState).Build()
)

// Notifier is the fire-and-forget notification collaborator.
type Notifier interface {
	NotifySuccess(title, message string)
	NotifyWarning(title, message string)
	NotifyFailure(title, message string)
}

// LookupClient resolves a free-text query to article data. Satisfied by
// *wikipedia.Client.
type LookupClient interface {
	Lookup(ctx context.Context, query string) (*wikipedia.LookupResult, error)
}

// Dialog is one form instance. Each dialog owns independent state; nothing
// is shared between instances.
type Dialog struct {
	mu         sync.Mutex
	state      State
	mode       Mode
	speciesID  uint
	author     string
	saved      species.RawRecord
	fields     species.RawRecord
	violations species.FieldErrors

	ds       datastore.Interface
	notifier Notifier
	lookup   LookupClient
}

// NewCreateDialog prepares a dialog for adding a record owned by author.
func NewCreateDialog(ds datastore.Interface, notifier Notifier, lookup LookupClient, author string) *Dialog {
	return &Dialog{
		state:    StateClosed,
		mode:     ModeCreate,
		author:   author,
		saved:    species.Defaults(),
		fields:   species.Defaults(),
		ds:       ds,
		notifier: notifier,
		lookup:   lookup,
	}
}

// NewUpdateDialog prepares a dialog for editing an existing record. The
// record's saved values become the reset baseline.
func NewUpdateDialog(ds datastore.Interface, notifier Notifier, lookup LookupClient, existing *datastore.Species) *Dialog {
	saved := species.RawFromRecord(recordFromModel(existing))
	return &Dialog{
		state:     StateClosed,
		mode:      ModeUpdate,
		speciesID: existing.ID,
		author:    existing.Author,
		saved:     saved,
		fields:    saved,
		ds:        ds,
		notifier:  notifier,
		lookup:    lookup,
	}
}

// Open transitions the dialog to editing, loading the baseline values.
func (d *Dialog) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == StateSubmitting {
		return ErrSubmitInFlight
	}
	d.fields = d.saved
	d.violations = nil
	d.state = StateOpen
	return nil
}

// Close discards the dialog's editing state. A dialog cannot close while a
// submission is in flight.
func (d *Dialog) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == StateSubmitting {
		return ErrSubmitInFlight
	}
	d.state = StateClosed
	d.violations = nil
	return nil
}

// State returns the current lifecycle state.
func (d *Dialog) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Fields returns a copy of the current form values.
func (d *Dialog) Fields() species.RawRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fields
}

// Violations returns the validation errors from the latest field change or
// submission attempt.
func (d *Dialog) Violations() species.FieldErrors {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.violations
}

// SetField applies one field change and re-validates so inline errors stay
// current. The value is the raw user input; normalization happens during
// validation.
func (d *Dialog) SetField(name, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != StateOpen {
		return ErrNotOpen
	}

	switch name {
	case species.FieldScientificName:
		d.fields.ScientificName = value
	case species.FieldCommonName:
		d.fields.CommonName = value
	case species.FieldKingdom:
		d.fields.Kingdom = value
	case species.FieldTotalPopulation:
		d.fields.TotalPopulation = species.PopulationFromString(value)
	case species.FieldImage:
		d.fields.Image = value
	case species.FieldDescription:
		d.fields.Description = value
	default:
		return errors.Newf("unknown form field %q", name).
			Component("form").
			Category(errors.CategoryValidation).
			Build()
	}

	_, d.violations = species.Validate(d.fields)
	return nil
}

// SetFields replaces the whole form state at once, as an API request body
// does, and re-validates.
func (d *Dialog) SetFields(raw species.RawRecord) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != StateOpen {
		return ErrNotOpen
	}
	d.fields = raw
	_, d.violations = species.Validate(raw)
	return nil
}

// Validate re-checks the current values and records the result.
func (d *Dialog) Validate() species.FieldErrors {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, d.violations = species.Validate(d.fields)
	return d.violations
}

// ApplyLookup fetches article data for query and autofills the description
// and image fields. Failures are surfaced as warnings and never disturb any
// other field.
func (d *Dialog) ApplyLookup(ctx context.Context, query string) error {
	d.mu.Lock()
	if d.state != StateOpen {
		d.mu.Unlock()
		return ErrNotOpen
	}
	d.mu.Unlock()

	result, err := d.lookup.Lookup(ctx, query)
	if err != nil {
		switch {
		case errors.Is(err, wikipedia.ErrEmptyQuery):
			d.notifier.NotifyWarning("Nothing to search for.", "Enter a species name first.")
		case errors.Is(err, wikipedia.ErrNoMatch), errors.Is(err, wikipedia.ErrNoPageData):
			d.notifier.NotifyWarning("No matching article found.", "")
		default:
			d.notifier.NotifyWarning("Lookup failed.", err.Error())
		}
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state != StateOpen {
		return ErrNotOpen
	}
	// Overwrite the two target fields even when empty; they are normalized
	// again at submit time.
	d.fields.Description = result.Extract
	d.fields.Image = result.ThumbnailURL
	_, d.violations = species.Validate(d.fields)
	d.notifier.NotifySuccess("Wikipedia data loaded successfully!",
		fmt.Sprintf("Loaded article data for %s.", result.Title))
	return nil
}

// Submit validates the current values and hands them to the datastore. On
// success the dialog closes and resets its baseline; on a persistence
// failure it stays open with the attempted input intact and the datastore's
// error message is surfaced verbatim.
func (d *Dialog) Submit(ctx context.Context) (*datastore.Species, error) {
	d.mu.Lock()
	switch d.state {
	case StateSubmitting:
		d.mu.Unlock()
		return nil, ErrSubmitInFlight
	case StateOpen:
	default:
		d.mu.Unlock()
		return nil, ErrNotOpen
	}

	record, violations := species.Validate(d.fields)
	if len(violations) > 0 {
		d.violations = violations
		d.mu.Unlock()
		return nil, violations
	}
	d.violations = nil
	d.state = StateSubmitting
	d.mu.Unlock()

	var (
		model *datastore.Species
		err   error
	)
	if d.mode == ModeCreate {
		model = modelFromRecord(*record, d.author)
		err = d.ds.CreateSpecies(ctx, model)
	} else {
		err = d.ds.UpdateSpecies(ctx, d.speciesID, updateColumns(*record))
		if err == nil {
			model = modelFromRecord(*record, d.author)
			model.ID = d.speciesID
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err != nil {
		// The user's attempted input stays in place for a manual retry.
		d.state = StateOpen
		d.notifier.NotifyFailure("Something went wrong.", err.Error())
		return nil, err
	}

	if d.mode == ModeCreate {
		d.saved = species.Defaults()
		d.notifier.NotifySuccess("New species added!",
			fmt.Sprintf("Successfully added %s.", record.ScientificName))
	} else {
		d.saved = species.RawFromRecord(*record)
		d.notifier.NotifySuccess("Species updated!",
			fmt.Sprintf("Successfully updated %s.", record.ScientificName))
	}
	d.fields = d.saved
	d.state = StateClosed
	return model, nil
}

// modelFromRecord builds the persistence payload: the six normalized fields
// plus the owner.
func modelFromRecord(rec species.Record, author string) *datastore.Species {
	return &datastore.Species{
		ScientificName:  rec.ScientificName,
		CommonName:      rec.CommonName,
		Kingdom:         rec.Kingdom,
		TotalPopulation: rec.TotalPopulation,
		Image:           rec.Image,
		Description:     rec.Description,
		Author:          author,
	}
}

// recordFromModel converts a persisted record back into form terms.
func recordFromModel(m *datastore.Species) species.Record {
	return species.Record{
		ScientificName:  m.ScientificName,
		CommonName:      m.CommonName,
		Kingdom:         m.Kingdom,
		TotalPopulation: m.TotalPopulation,
		Image:           m.Image,
		Description:     m.Description,
	}
}

// updateColumns is the full-field replacement payload for an update. The
// author column is deliberately absent; ownership never changes.
func updateColumns(rec species.Record) map[string]any {
	return map[string]any{
		"scientific_name":  rec.ScientificName,
		"common_name":      rec.CommonName,
		"kingdom":          rec.Kingdom,
		"total_population": rec.TotalPopulation,
		"image":            rec.Image,
		"description":      rec.Description,
	}
}
