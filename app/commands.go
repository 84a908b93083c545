package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/syncs"
	"gopkg.in/yaml.v3"

	"github.com/umputun/jobtrack/app/job"
	"github.com/umputun/jobtrack/app/remote"
	"github.com/umputun/jobtrack/app/sheet"
	"github.com/umputun/jobtrack/app/tracker"
	"github.com/umputun/jobtrack/app/view"
	"github.com/umputun/jobtrack/app/web"
)

// output is embedded into commands printing results, tests replace the writer
type output struct {
	out io.Writer
}

func (o output) writer() io.Writer {
	if o.out == nil {
		return os.Stdout
	}
	return o.out
}

// JobFields are the record fields settable from the command line, nil means not given
type JobFields struct {
	Company   *string `long:"company" description:"company name"`
	Position  *string `long:"position" description:"position"`
	Status    *string `long:"status" description:"status, one of Applied, Contacted, Interview, Offer, Rejected, Ghosted"`
	Salary    *string `long:"salary" description:"salary"`
	Location  *string `long:"location" description:"location"`
	ApplyVia  *string `long:"via" description:"where the application was sent"`
	ApplyDate *string `long:"date" description:"apply date, YYYY-MM-DD"`
	Notes     *string `long:"notes" description:"notes"`
}

// apply overrides the fields of j that were given
func (f JobFields) apply(j job.Job) (job.Job, error) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&j.Company, f.Company)
	set(&j.Position, f.Position)
	set(&j.Salary, f.Salary)
	set(&j.Location, f.Location)
	set(&j.ApplyVia, f.ApplyVia)
	set(&j.ApplyDate, f.ApplyDate)
	set(&j.Notes, f.Notes)
	if f.Status != nil {
		st, err := job.ParseStatus(*f.Status)
		if err != nil {
			return job.Job{}, err
		}
		j.Status = st
	}
	if j.ApplyDate != "" {
		if _, err := time.Parse(job.DateLayout, j.ApplyDate); err != nil {
			return job.Job{}, fmt.Errorf("invalid apply date %q, expected YYYY-MM-DD", j.ApplyDate)
		}
	}
	return j, nil
}

// refArg is the positional job reference of edit and delete
type refArg struct {
	Ref string `positional-arg-name:"ref" description:"job id or 1-based list number"`
}

// resolveRef finds a job by id, or by its 1-based position in the unfiltered list
func resolveRef(jobs []job.Job, ref string) (job.Job, error) {
	ref = strings.TrimSpace(ref)
	for _, j := range jobs {
		if j.ID == ref {
			return j, nil
		}
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(jobs) {
			return job.Job{}, fmt.Errorf("%w: number %d out of range 1..%d", tracker.ErrNotFound, n, len(jobs))
		}
		return jobs[n-1], nil
	}
	return job.Job{}, fmt.Errorf("%w: %q", tracker.ErrNotFound, ref)
}

type listCmd struct {
	output
	Search string `short:"s" long:"search" description:"case-insensitive match on company or position"`
	Status string `long:"status" default:"all" description:"status filter, all for any"`
	Format string `short:"f" long:"format" choice:"table" choice:"json" choice:"yaml" default:"table" description:"output format"`
}

// Execute prints the filtered working set
func (c *listCmd) Execute(_ []string) error {
	ctx, cancel := contextWithSignals()
	defer cancel()
	ctrl, closeFn, err := openTracker(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	status := job.Status(view.StatusAll)
	if c.Status != "" && !strings.EqualFold(c.Status, view.StatusAll) {
		if status, err = job.ParseStatus(c.Status); err != nil {
			return err
		}
	}
	jobs := ctrl.Jobs()
	filtered := view.Filter(jobs, c.Search, status)

	switch c.Format {
	case "json":
		enc := json.NewEncoder(c.writer())
		enc.SetIndent("", "  ")
		return enc.Encode(filtered)
	case "yaml":
		enc := yaml.NewEncoder(c.writer())
		defer enc.Close()
		return enc.Encode(filtered)
	}
	return printJobs(c.writer(), jobs, filtered, ctrl.Collection(), ctrl.Mode().String())
}

// printJobs renders the table, numbers refer to positions in the unfiltered list so they work with edit and delete
func printJobs(w io.Writer, all, filtered []job.Job, collection, mode string) error {
	pos := make(map[string]int, len(all))
	for i, j := range all {
		pos[j.ID] = i + 1
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "#\tCOMPANY\tPOSITION\tSTATUS\tSALARY\tLOCATION\tVIA\tDATE\n")
	for _, j := range filtered {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", pos[j.ID], j.Company, j.Position, j.Status,
			j.Salary, j.Location, j.ApplyVia, j.ApplyDate)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write list: %w", err)
	}
	_, err := fmt.Fprintf(w, "%s (%s): %d of %d\n", collection, mode, len(filtered), len(all))
	return err
}

type statsCmd struct {
	output
}

// Execute prints the summary of the working set
func (c *statsCmd) Execute(_ []string) error {
	ctx, cancel := contextWithSignals()
	defer cancel()
	ctrl, closeFn, err := openTracker(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	return printSummary(c.writer(), ctrl.Collection(), view.Summarize(ctrl.Jobs()))
}

func printSummary(w io.Writer, collection string, sum view.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%d\n", collection, sum.Total)
	for _, st := range job.Statuses() {
		fmt.Fprintf(tw, "  %s\t%d\n", st, sum.ByStatus[st])
	}
	if sum.Unknown > 0 {
		fmt.Fprintf(tw, "  unknown\t%d\n", sum.Unknown)
	}
	for _, cat := range []job.Category{job.CategoryActive, job.CategorySuccess, job.CategoryClosed} {
		fmt.Fprintf(tw, "%s\t%d\n", cat, sum.ByCategory[cat])
	}
	return tw.Flush()
}

type addCmd struct {
	output
	JobFields
}

// Execute saves a new job built from the form defaults and the given fields
func (c *addCmd) Execute(_ []string) error {
	draft, err := c.apply(job.Draft(time.Now()))
	if err != nil {
		return err
	}
	if draft.Company == "" {
		return errors.New("company is required")
	}

	ctx, cancel := contextWithSignals()
	defer cancel()
	ctrl, closeFn, err := openTracker(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := ctrl.Save(ctx, draft, nil); err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.writer(), "added %s to %s, %d jobs\n", draft.Company, ctrl.Collection(), len(ctrl.Jobs()))
	return err
}

type editCmd struct {
	output
	JobFields
	Args refArg `positional-args:"yes" required:"yes"`
}

// Execute overwrites the referenced job with its current values and the given fields
func (c *editCmd) Execute(_ []string) error {
	ctx, cancel := contextWithSignals()
	defer cancel()
	ctrl, closeFn, err := openTracker(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	target, err := resolveRef(ctrl.Jobs(), c.Args.Ref)
	if err != nil {
		return err
	}
	ctrl.StartEdit(target)
	draft, err := c.apply(target)
	if err != nil {
		ctrl.CancelEdit()
		return err
	}
	if err := ctrl.SaveEditing(ctx, draft); err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.writer(), "updated %s in %s\n", draft.Company, ctrl.Collection())
	return err
}

type deleteCmd struct {
	output
	Args refArg `positional-args:"yes" required:"yes"`
}

// Execute deletes the referenced job
func (c *deleteCmd) Execute(_ []string) error {
	ctx, cancel := contextWithSignals()
	defer cancel()
	ctrl, closeFn, err := openTracker(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	target, err := resolveRef(ctrl.Jobs(), c.Args.Ref)
	if err != nil {
		return err
	}
	if err := ctrl.Delete(ctx, target); err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.writer(), "deleted %s from %s, %d jobs\n", target.Company, ctrl.Collection(), len(ctrl.Jobs()))
	return err
}

type connectCmd struct {
	output
	Args struct {
		URL string `positional-arg-name:"url" description:"remote endpoint, empty for local mode"`
	} `positional-args:"yes"`
}

// Execute stores the endpoint and refreshes from the backend it selects
func (c *connectCmd) Execute(_ []string) error {
	ctx, cancel := contextWithSignals()
	defer cancel()

	store, closeFn, err := openStore()
	if err != nil {
		return err
	}
	defer closeFn()
	ctrl, err := tracker.New(tracker.Config{Local: store, HTTPClient: httpClient(),
		Collections: opts.Collections, Collection: opts.Collection})
	if err != nil {
		return err
	}
	if err := ctrl.SetConnection(ctx, c.Args.URL); err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.writer(), "mode %s, %s has %d jobs\n", ctrl.Mode(), ctrl.Collection(), len(ctrl.Jobs()))
	return err
}

type overviewCmd struct {
	output
	Concurrency int `long:"concurrency" default:"4" description:"max collections loaded at once"`
}

// collectionSummary is one line of the overview
type collectionSummary struct {
	Name    string
	Summary view.Summary
	Err     error
}

// Execute loads every collection from the active backend concurrently and prints their counts
func (c *overviewCmd) Execute(_ []string) error {
	ctx, cancel := contextWithSignals()
	defer cancel()
	store, closeFn, err := openStore()
	if err != nil {
		return err
	}
	defer closeFn()

	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = store.LoadConnection()
	}
	load := func(_ context.Context, name string) ([]job.Job, error) { return store.LoadCollection(name), nil }
	if endpoint != "" {
		cl := remote.New(endpoint, httpClient())
		load = cl.Read
	}

	res := loadCollections(ctx, opts.Collections, c.Concurrency, load)
	tw := tabwriter.NewWriter(c.writer(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "COLLECTION\tTOTAL\tACTIVE\tSUCCESS\tCLOSED\tUNKNOWN\n")
	var errs []error
	for _, r := range res {
		if r.Err != nil {
			fmt.Fprintf(tw, "%s\terror: %v\n", r.Name, r.Err)
			errs = append(errs, r.Err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n", r.Name, r.Summary.Total, r.Summary.ByCategory[job.CategoryActive],
			r.Summary.ByCategory[job.CategorySuccess], r.Summary.ByCategory[job.CategoryClosed], r.Summary.Unknown)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write overview: %w", err)
	}
	return errors.Join(errs...)
}

// loadCollections runs load for every collection with bounded concurrency, results keep the input order
func loadCollections(ctx context.Context, names []string, concurrency int,
	load func(ctx context.Context, name string) ([]job.Job, error)) []collectionSummary {
	if concurrency < 1 {
		concurrency = 1
	}
	res := make([]collectionSummary, len(names))
	gr := syncs.NewSizedGroup(concurrency, syncs.Context(ctx))
	for i, name := range names {
		gr.Go(func(ctx context.Context) {
			jobs, err := load(ctx, name)
			if err != nil {
				log.Printf("[WARN] failed to load %q: %v", name, err)
				res[i] = collectionSummary{Name: name, Err: fmt.Errorf("failed to load %q: %w", name, err)}
				return
			}
			res[i] = collectionSummary{Name: name, Summary: view.Summarize(jobs)}
		})
	}
	gr.Wait()
	return res
}

type importCmd struct {
	output
	Args struct {
		File string `positional-arg-name:"file" description:"yaml file with a list of jobs"`
	} `positional-args:"yes" required:"yes"`
}

// Execute saves every record of the file as a new job, in file order. Stops on the first failure.
func (c *importCmd) Execute(_ []string) error {
	jobs, err := readImport(c.Args.File)
	if err != nil {
		return err
	}

	ctx, cancel := contextWithSignals()
	defer cancel()
	ctrl, closeFn, err := openTracker(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	for i, j := range jobs {
		if err := ctrl.Save(ctx, j, nil); err != nil {
			return fmt.Errorf("failed to import record %d (%s), %d imported: %w", i+1, j.Company, i, err)
		}
	}
	_, err = fmt.Fprintf(c.writer(), "imported %d jobs to %s\n", len(jobs), ctrl.Collection())
	return err
}

// readImport decodes and validates the import file, ids and row indexes in the file are ignored
func readImport(path string) ([]job.Job, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is a user argument
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var recs []job.Job
	if err := yaml.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for i := range recs {
		recs[i].ID, recs[i].RowIndex = "", 0
		if recs[i].Status != "" {
			st, err := job.ParseStatus(string(recs[i].Status))
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", i+1, err)
			}
			recs[i].Status = st
		}
	}
	return recs, nil
}

type schemaCmd struct {
	output
}

// Execute prints the protocol schema as indented json
func (c *schemaCmd) Execute(_ []string) error {
	data, err := json.MarshalIndent(remote.GenerateSchema(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}
	_, err = fmt.Fprintln(c.writer(), string(data))
	return err
}

type serverCmd struct {
	Listen string `short:"l" long:"listen" env:"JOBTRACK_LISTEN" default:":8080" description:"listen address"`
}

// Execute runs the json api over one controller until terminated
func (c *serverCmd) Execute(_ []string) error {
	ctx, cancel := contextWithSignals()
	defer cancel()
	ctrl, closeFn, err := openTracker(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	srv, err := web.New(web.Config{Tracker: ctrl, Version: revision, Timeout: opts.Timeout})
	if err != nil {
		return err
	}
	return srv.Run(ctx, c.Listen)
}

type sheetCmd struct {
	Listen    string  `short:"l" long:"listen" env:"JOBTRACK_SHEET_LISTEN" default:":8090" description:"listen address"`
	DB        string  `long:"sheet-db" env:"JOBTRACK_SHEET_DB" default:"sheet.db" description:"sheet database file"`
	RateLimit float64 `long:"rate-limit" env:"JOBTRACK_SHEET_RATE_LIMIT" default:"10" description:"max writes per second per client, 0 to disable"`
}

// Execute runs the sheet backend until terminated
func (c *sheetCmd) Execute(_ []string) error {
	ctx, cancel := contextWithSignals()
	defer cancel()
	store, err := sheet.NewStore(c.DB)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("[WARN] failed to close sheet store: %v", err)
		}
	}()
	return sheet.NewServer(sheet.Config{Store: store, Version: revision, RateLimit: c.RateLimit}).Run(ctx, c.Listen)
}
