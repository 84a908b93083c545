package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/joho/godotenv"
	"github.com/umputun/go-flags"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/umputun/jobtrack/app/persistence"
	"github.com/umputun/jobtrack/app/tracker"
)

var opts struct {
	DB          string        `long:"db" env:"JOBTRACK_DB" default:"jobtrack.db" description:"local database file"`
	Collection  string        `short:"c" long:"collection" env:"JOBTRACK_COLLECTION" description:"active collection, first of collections if empty"`
	Collections []string      `long:"collections" env:"JOBTRACK_COLLECTIONS" env-delim:"," default:"Didil" default:"Sabil" description:"allowed collections"`
	Endpoint    string        `short:"e" long:"endpoint" env:"JOBTRACK_ENDPOINT" description:"remote endpoint for this run, overrides the stored connection"`
	Timeout     time.Duration `long:"timeout" env:"JOBTRACK_TIMEOUT" default:"30s" description:"remote request timeout"`
	Dbg         bool          `long:"dbg" env:"JOBTRACK_DEBUG" description:"debug mode"`

	Log struct {
		Enabled         bool   `long:"enabled" env:"ENABLED" description:"enable logging to file"`
		Filename        string `long:"filename" env:"FILENAME" default:"jobtrack.log" description:"log file name"`
		MaxSize         int    `long:"max-size" env:"MAX_SIZE" default:"100" description:"max log file size in megabytes"`
		MaxBackups      int    `long:"max-backups" env:"MAX_BACKUPS" default:"7" description:"max number of old log files to keep"`
		MaxAge          int    `long:"max-age" env:"MAX_AGE" default:"0" description:"max days to keep old log files, 0 keeps forever"`
		EnabledCompress bool   `long:"compress" env:"COMPRESS" description:"compress rotated log files"`
	} `group:"log" namespace:"log" env-namespace:"JOBTRACK_LOG"`

	List     listCmd     `command:"list" description:"list jobs of the active collection"`
	Stats    statsCmd    `command:"stats" description:"show counts by status and category"`
	Add      addCmd      `command:"add" description:"add a job"`
	Edit     editCmd     `command:"edit" description:"overwrite a job, ref is an id or list number"`
	Delete   deleteCmd   `command:"delete" description:"delete a job, ref is an id or list number"`
	Connect  connectCmd  `command:"connect" description:"set the stored remote endpoint, no url switches to local mode"`
	Overview overviewCmd `command:"overview" description:"show counts for every collection"`
	Import   importCmd   `command:"import" description:"add jobs from a yaml file"`
	Schema   schemaCmd   `command:"schema" description:"print the remote protocol json schema"`
	Server   serverCmd   `command:"server" description:"run the json api server"`
	Sheet    sheetCmd    `command:"sheet" description:"run the sheet backend"`
}

var revision = "unknown"

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	p := flags.NewParser(&opts, flags.Default)
	p.CommandHandler = func(cmd flags.Commander, args []string) error {
		setupLogger(setupLogs(), opts.Dbg)
		log.Printf("[DEBUG] jobtrack %s", revision)
		return cmd.Execute(args)
	}

	defer func() {
		if x := recover(); x != nil {
			log.Printf("[WARN] run time panic:\n%v", x)
			panic(x)
		}
	}()

	if _, err := p.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		if _, ok := err.(*flags.Error); !ok {
			log.Printf("[ERROR] %v", err)
		}
		os.Exit(1)
	}
}

// setupLogs returns the log destination, stdout unless file logging is enabled
func setupLogs() io.Writer {
	if !opts.Log.Enabled {
		return os.Stdout
	}
	return &lumberjack.Logger{
		Filename:   opts.Log.Filename,
		MaxSize:    opts.Log.MaxSize,
		MaxBackups: opts.Log.MaxBackups,
		MaxAge:     opts.Log.MaxAge,
		Compress:   opts.Log.EnabledCompress,
	}
}

// setupLogger configures lgr. Without debug only errors reach the console, command output stays clean.
func setupLogger(out io.Writer, dbg bool) {
	if dbg {
		log.Setup(log.Debug, log.Msec, log.CallerFunc, log.CallerPkg, log.CallerFile, log.Out(out), log.Err(os.Stderr))
		return
	}
	if opts.Log.Enabled {
		log.Setup(log.Msec, log.Out(out), log.Err(out))
		return
	}
	log.Setup(log.Out(io.Discard), log.Err(os.Stderr))
}

// openStore opens the local store, the returned function closes it
func openStore() (*persistence.SQLiteStore, func(), error) {
	store, err := persistence.NewSQLiteStore(opts.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open local store: %w", err)
	}
	return store, func() {
		if err := store.Close(); err != nil {
			log.Printf("[WARN] failed to close local store: %v", err)
		}
	}, nil
}

func httpClient() *http.Client {
	return &http.Client{Timeout: opts.Timeout}
}

// openTracker makes a controller over the configured backend and refreshes it once.
// The endpoint option wins over the stored connection. The returned function closes the local store.
func openTracker(ctx context.Context) (*tracker.Controller, func(), error) {
	store, closeFn, err := openStore()
	if err != nil {
		return nil, nil, err
	}

	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = store.LoadConnection()
	}
	ctrl, err := tracker.New(tracker.Config{
		Local:       store,
		HTTPClient:  httpClient(),
		Endpoint:    endpoint,
		Collections: opts.Collections,
		Collection:  opts.Collection,
	})
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	if err := ctrl.Refresh(ctx); err != nil {
		closeFn()
		return nil, nil, err
	}
	return ctrl, closeFn, nil
}

// contextWithSignals returns a context canceled on SIGTERM or SIGINT. SIGQUIT dumps goroutine stacks.
func contextWithSignals() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	go func() {
		stacktrace := make([]byte, 8192)
		for {
			select {
			case <-ctx.Done():
				signal.Stop(sigChan)
				return
			case sig := <-sigChan:
				if sig == syscall.SIGQUIT {
					length := runtime.Stack(stacktrace, true)
					fmt.Println(string(stacktrace[:length]))
					continue
				}
				log.Printf("[INFO] signal %v, terminating", sig)
				cancel()
			}
		}
	}()
	signal.Notify(sigChan, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT)
	return ctx, cancel
}
