// Package tracker keeps the working set of job applications and synchronizes it with the active backend.
// The backend is the local store unless a remote endpoint is configured. Local mutations rewrite the whole
// collection snapshot, remote mutations are followed by a full re-read because row indexes can shift
// for reasons invisible to this process.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/jobtrack/app/enums"
	"github.com/umputun/jobtrack/app/job"
	"github.com/umputun/jobtrack/app/remote"
)

//go:generate moq -out mocks/local_store.go -pkg mocks -skip-ensure -fmt goimports . LocalStore
//go:generate moq -out mocks/remote_store.go -pkg mocks -skip-ensure -fmt goimports . RemoteStore

// DefaultCollections are the collection names used when none configured
var DefaultCollections = []string{"Didil", "Sabil"}

var (
	// ErrNotFound is returned when a local edit or delete refers to an id absent from the collection
	ErrNotFound = errors.New("job not found")
	// ErrUnknownCollection is returned for a collection name outside the configured set
	ErrUnknownCollection = errors.New("unknown collection")
)

// LocalStore persists collection snapshots and the connection setting
type LocalStore interface {
	LoadCollection(name string) []job.Job
	SaveCollection(name string, jobs []job.Job) error
	LoadConnection() string
	SaveConnection(url string) error
}

// RemoteStore is the spreadsheet-backed store addressed by row index
type RemoteStore interface {
	Read(ctx context.Context, collection string) ([]job.Job, error)
	Create(ctx context.Context, collection string, j job.Job) error
	Update(ctx context.Context, collection string, rowIndex int, j job.Job) error
	Delete(ctx context.Context, collection string, rowIndex int) error
}

// Config defines controller dependencies and initial state
type Config struct {
	Local       LocalStore
	Remote      func(endpoint string) RemoteStore // makes a remote store for the endpoint, defaults to remote.New
	HTTPClient  *http.Client                      // used by the default Remote only
	Endpoint    string                            // remote endpoint, empty for local mode
	Collections []string                          // allowed collection names, DefaultCollections if empty
	Collection  string                            // initially active collection, first of Collections if empty
}

// Controller owns the working set of the active collection. Operations are not serialized:
// a mutation issued while another is in flight races with it. Fields are guarded by mu
// so concurrent callers are safe.
type Controller struct {
	local       LocalStore
	newRemote   func(endpoint string) RemoteStore
	collections []string

	mu         sync.Mutex
	collection string
	endpoint   string
	jobs       []job.Job
	editing    *job.Job
	loading    int
	lastGen    uint64 // last issued refresh
	appliedGen uint64 // last refresh applied to jobs
}

// New makes a controller. The working set is empty until the first Refresh.
func New(cfg Config) (*Controller, error) {
	if cfg.Local == nil {
		return nil, errors.New("local store is required")
	}

	collections := cfg.Collections
	if len(collections) == 0 {
		collections = DefaultCollections
	}
	collection := cfg.Collection
	if collection == "" {
		collection = collections[0]
	}
	if !slices.Contains(collections, collection) {
		return nil, fmt.Errorf("%w %q, expected one of %v", ErrUnknownCollection, collection, collections)
	}

	newRemote := cfg.Remote
	if newRemote == nil {
		httpClient := cfg.HTTPClient
		newRemote = func(endpoint string) RemoteStore { return remote.New(endpoint, httpClient) }
	}

	return &Controller{
		local:       cfg.Local,
		newRemote:   newRemote,
		collections: slices.Clone(collections),
		collection:  collection,
		endpoint:    strings.TrimSpace(cfg.Endpoint),
		jobs:        []job.Job{},
	}, nil
}

// Refresh replaces the working set with the active collection read from the active backend.
// On failure the working set is left untouched. A result is discarded if the collection or endpoint
// changed while it was loading, or if a later refresh was already applied.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	collection, endpoint := c.collection, c.endpoint
	c.lastGen++
	gen := c.lastGen
	c.loading++
	c.mu.Unlock()
	defer c.doneLoading()

	var jobs []job.Job
	if endpoint == "" {
		jobs = c.local.LoadCollection(collection)
	} else {
		var err error
		if jobs, err = c.newRemote(endpoint).Read(ctx, collection); err != nil {
			return fmt.Errorf("failed to refresh %q: %w", collection, err)
		}
	}

	if jobs == nil {
		jobs = []job.Job{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if collection != c.collection || endpoint != c.endpoint || gen < c.appliedGen {
		log.Printf("[DEBUG] discard stale refresh of %q (generation %d)", collection, gen)
		return nil
	}
	c.jobs, c.appliedGen = jobs, gen
	log.Printf("[DEBUG] refreshed %q, %d jobs, mode %s", collection, len(jobs), modeOf(endpoint))
	return nil
}

// Save stores draft as a new job, or as a full overwrite of target if target is not nil.
// Drafts with empty status are saved as Applied. A successful save clears the edit target.
func (c *Controller) Save(ctx context.Context, draft job.Job, target *job.Job) error {
	draft = draft.Normalize()
	if target != nil {
		t := *target // captured by value, a refresh may replace the working set meanwhile
		target = &t
	}

	c.mu.Lock()
	collection, endpoint := c.collection, c.endpoint
	c.loading++
	c.mu.Unlock()
	defer c.doneLoading()

	if endpoint == "" {
		if err := c.saveLocal(collection, draft, target); err != nil {
			return err
		}
		c.CancelEdit()
		return nil
	}

	store := c.newRemote(endpoint)
	var err error
	if target != nil {
		err = store.Update(ctx, collection, target.RowIndex, draft)
	} else {
		err = store.Create(ctx, collection, draft)
	}
	if err != nil {
		return fmt.Errorf("failed to save to %q: %w", collection, err)
	}
	log.Printf("[INFO] saved %s/%s to remote %q", draft.Company, draft.Position, collection)
	c.CancelEdit()
	return c.Refresh(ctx)
}

// SaveEditing saves draft over the current edit target, or as a new job if nothing is being edited
func (c *Controller) SaveEditing(ctx context.Context, draft job.Job) error {
	target, ok := c.EditingTarget()
	if !ok {
		return c.Save(ctx, draft, nil)
	}
	return c.Save(ctx, draft, &target)
}

// Delete removes the job. In remote mode a job without row index is ignored, it can't exist remotely.
func (c *Controller) Delete(ctx context.Context, j job.Job) error {
	c.mu.Lock()
	collection, endpoint := c.collection, c.endpoint
	c.mu.Unlock()

	if endpoint != "" && j.RowIndex == 0 {
		log.Printf("[DEBUG] skip remote delete of %s, no row index", j.ID)
		return nil
	}

	c.mu.Lock()
	c.loading++
	c.mu.Unlock()
	defer c.doneLoading()

	if endpoint == "" {
		return c.deleteLocal(collection, j.ID)
	}

	if err := c.newRemote(endpoint).Delete(ctx, collection, j.RowIndex); err != nil {
		return fmt.Errorf("failed to delete row %d from %q: %w", j.RowIndex, collection, err)
	}
	log.Printf("[INFO] deleted row %d from remote %q", j.RowIndex, collection)
	return c.Refresh(ctx)
}

// SwitchCollection makes name the active collection and refreshes it. No data moves between collections.
func (c *Controller) SwitchCollection(ctx context.Context, name string) error {
	if !slices.Contains(c.collections, name) {
		return fmt.Errorf("%w %q, expected one of %v", ErrUnknownCollection, name, c.collections)
	}
	c.mu.Lock()
	if c.collection != name {
		c.editing = nil
	}
	c.collection = name
	c.mu.Unlock()
	log.Printf("[INFO] active collection %q", name)
	return c.Refresh(ctx)
}

// SetConnection persists the remote endpoint and refreshes from the backend it selects.
// Empty url switches to local mode.
func (c *Controller) SetConnection(ctx context.Context, url string) error {
	url = strings.TrimSpace(url)
	if err := c.local.SaveConnection(url); err != nil {
		return fmt.Errorf("failed to set connection: %w", err)
	}

	c.mu.Lock()
	if c.endpoint != url {
		c.editing = nil
	}
	c.endpoint = url
	c.mu.Unlock()
	log.Printf("[INFO] connection set, mode %s", modeOf(url))
	return c.Refresh(ctx)
}

// StartEdit remembers a copy of j as the edit target
func (c *Controller) StartEdit(j job.Job) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editing = &j
}

// EditingTarget returns the current edit target
func (c *Controller) EditingTarget() (job.Job, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editing == nil {
		return job.Job{}, false
	}
	return *c.editing, true
}

// CancelEdit drops the edit target
func (c *Controller) CancelEdit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.editing = nil
}

// Jobs returns a copy of the working set
func (c *Controller) Jobs() []job.Job {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.jobs)
}

// Find returns the job with id from the working set
func (c *Controller) Find(id string) (job.Job, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, j := range c.jobs {
		if j.ID == id {
			return j, true
		}
	}
	return job.Job{}, false
}

// Collection returns the active collection name
func (c *Controller) Collection() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.collection
}

// Collections returns the allowed collection names
func (c *Controller) Collections() []string {
	return slices.Clone(c.collections)
}

// Endpoint returns the remote endpoint, empty in local mode
func (c *Controller) Endpoint() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.endpoint
}

// Mode returns the backend selected by the current endpoint
func (c *Controller) Mode() enums.Mode {
	return modeOf(c.Endpoint())
}

// IsLoading reports whether any refresh or mutation is in flight
func (c *Controller) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading > 0
}

// saveLocal does read-modify-write of the whole collection snapshot
func (c *Controller) saveLocal(collection string, draft job.Job, target *job.Job) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	jobs := c.local.LoadCollection(collection)
	if target != nil {
		idx := slices.IndexFunc(jobs, func(j job.Job) bool { return j.ID == target.ID })
		if idx < 0 {
			return fmt.Errorf("failed to update %s in %q: %w", target.ID, collection, ErrNotFound)
		}
		jobs[idx] = draft.WithIdentity(jobs[idx])
	} else {
		draft.ID, draft.RowIndex = job.NewID(), 0
		jobs = append(jobs, draft)
	}

	if err := c.local.SaveCollection(collection, jobs); err != nil {
		return fmt.Errorf("failed to save to %q: %w", collection, err)
	}
	c.applyLocal(collection, jobs)
	return nil
}

func (c *Controller) deleteLocal(collection, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	jobs := c.local.LoadCollection(collection)
	idx := slices.IndexFunc(jobs, func(j job.Job) bool { return j.ID == id })
	if idx < 0 {
		return fmt.Errorf("failed to delete %s from %q: %w", id, collection, ErrNotFound)
	}
	jobs = slices.Delete(jobs, idx, idx+1)

	if err := c.local.SaveCollection(collection, jobs); err != nil {
		return fmt.Errorf("failed to delete from %q: %w", collection, err)
	}
	c.applyLocal(collection, jobs)
	return nil
}

// applyLocal sets the working set after a local write, unless the active collection or mode moved on.
// Must be called with mu held.
func (c *Controller) applyLocal(collection string, jobs []job.Job) {
	if c.collection != collection || c.endpoint != "" {
		return
	}
	c.jobs = slices.Clone(jobs)
	c.lastGen++ // refreshes issued before this write are stale now
	c.appliedGen = c.lastGen
}

func (c *Controller) doneLoading() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading--
}

func modeOf(endpoint string) enums.Mode {
	if endpoint == "" {
		return enums.ModeLocal
	}
	return enums.ModeRemote
}
