package engine

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lacoski/backurne/pkg/cluster"
	"github.com/lacoski/backurne/pkg/config"
	"github.com/lacoski/backurne/pkg/driver"
	"github.com/lacoski/backurne/pkg/errors"
	"github.com/lacoski/backurne/pkg/expire"
	"github.com/lacoski/backurne/pkg/pipeline"
	"github.com/lacoski/backurne/pkg/snapshot"
	"github.com/lacoski/backurne/pkg/status"
	"github.com/lacoski/backurne/pkg/store"
	"github.com/lacoski/backurne/pkg/verify"
)

// StaleWindow is the check subcommand's freshness gate (spec.md §4.10).
const StaleWindow = 2 * time.Hour

// Engine owns every long-lived collaborator a CLI subcommand needs:
// cluster bindings, the backup driver, and the results store.
type Engine struct {
	cfg      *config.Config
	clusters []pipeline.ClusterBinding
	backup   driver.Driver
	store    *store.Store
	registry *prometheus.Registry
	metrics  *status.Metrics
}

// New assembles an Engine from a loaded, validated configuration.
func New(cfg *config.Config) (*Engine, error) {
	if cfg.SnapshotTag != "" {
		snapshot.Tag = cfg.SnapshotTag
	}

	backup := driver.NewRBDDriver(cfg.Backup.Pool, cfg.Backup.ClusterName, cfg.Backup.UserName)

	db, err := store.Open(cfg.CheckDB)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFatal, "engine: open results store", err)
	}

	var api *cluster.ProfilesAPIClient
	if cfg.ProfilesAPI != "" {
		api = cluster.NewProfilesAPIClient(cfg.ProfilesAPI, 10)
	}

	clusters := make([]pipeline.ClusterBinding, 0, len(cfg.LiveClusters))
	for _, cl := range cfg.LiveClusters {
		live := driver.NewRBDDriver(cl.Pool, cl.ClusterName, cl.UserName)
		adapter, err := buildAdapter(cl, cfg, live, api)
		if err != nil {
			db.Close()
			return nil, err
		}
		clusters = append(clusters, pipeline.ClusterBinding{Name: cl.Name, Pool: cl.Pool, Adapter: adapter, Live: live})
	}

	reg := prometheus.NewRegistry()
	return &Engine{
		cfg:      cfg,
		clusters: clusters,
		backup:   backup,
		store:    db,
		registry: reg,
		metrics:  status.NewMetrics(reg),
	}, nil
}

// Close releases the results store handle.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Registry exposes the Prometheus registry backing this Engine's metrics,
// for an operator to serve over HTTP.
func (e *Engine) Registry() *prometheus.Registry {
	return e.registry
}

func buildAdapter(cl config.ClusterConfig, cfg *config.Config, live driver.Driver, api *cluster.ProfilesAPIClient) (cluster.Adapter, error) {
	switch cl.Type {
	case "proxmox":
		token, err := resolveToken(cl.TokenFile)
		if err != nil {
			return nil, err
		}
		return &cluster.ProxmoxAdapter{
			BaseURL:      cl.Address,
			Pool:         cl.Pool,
			ClusterName:  cl.Name,
			FQDN:         cl.FQDN,
			BackupPool:   cfg.Backup.Pool,
			APIToken:     token,
			UUIDFallback: cfg.UUIDFallback,
			Profiles:     cfg.Profiles,
			ProfilesAPI:  api,
		}, nil
	case "plain":
		return &cluster.PlainAdapter{
			Pool:        cl.Pool,
			ClusterName: cl.Name,
			FQDN:        cl.FQDN,
			BackupPool:  cfg.Backup.Pool,
			Live:        live,
			Profiles:    cfg.Profiles,
			ProfilesAPI: api,
		}, nil
	default:
		return nil, errors.NewWithContext(errors.ErrCodeFatal, "engine: unknown cluster type", map[string]any{"cluster": cl.Name, "type": cl.Type})
	}
}

func resolveToken(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeFatal, "engine: read proxmox token file", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// runWithReporter starts reporter's render loop alongside work, guaranteeing
// the reporter is closed whether work succeeds, fails, or panics the
// surrounding context is cancelled, grounded on pipeline.Run's idiom.
func runWithReporter(ctx context.Context, phase string, debug bool, metrics *status.Metrics, work func(ctx context.Context, reporter *status.Reporter) error) error {
	reporter := status.NewReporter(phase, debug, metrics)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		reporter.Run(ctx)
		return nil
	})
	g.Go(func() error {
		defer reporter.Close()
		return work(ctx, reporter)
	})
	return g.Wait()
}

// disksFor flattens every unit's disks for one cluster binding into the
// (image, destination) pairs shared by the expirer and verifier.
func disksFor(ctx context.Context, cb pipeline.ClusterBinding) ([]cluster.Disk, error) {
	units, err := cb.Adapter.ListUnits(ctx)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeTransientIO, "engine: list units", err, map[string]any{"cluster": cb.Name})
	}
	var disks []cluster.Disk
	for _, u := range units {
		disks = append(disks, u.Disks...)
	}
	return disks, nil
}

func (e *Engine) debug() bool {
	return e.cfg.LogLevel == "debug"
}

// BackupRun runs the Producer/Consumer pipeline followed by both expiry
// phases (spec.md §6, `backup`). It returns an error only on an
// infrastructural failure that prevented the pipeline from starting at
// all; per-image failures are logged and never bubbled into the return
// value, per spec.md's "User-visible behavior" paragraph.
func (e *Engine) BackupRun(ctx context.Context) error {
	reporter := status.NewReporter("images processed", e.debug(), e.metrics)
	producer := &pipeline.Producer{Clusters: e.clusters, Backup: e.backup, LockDir: e.cfg.LockDir, Reporter: reporter}
	if err := pipeline.Run(ctx, producer, e.backup, e.cfg.LiveWorker, e.cfg.LockDir, reporter); err != nil {
		return errors.Wrap(errors.ErrCodeFatal, "engine: backup pipeline", err)
	}

	if err := e.expireLive(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeFatal, "engine: live expiry", err)
	}
	if err := e.expireBackup(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeFatal, "engine: backup expiry", err)
	}
	return nil
}

func (e *Engine) expireLive(ctx context.Context) error {
	return runWithReporter(ctx, "images cleaned up on live clusters", e.debug(), e.metrics, func(ctx context.Context, reporter *status.Reporter) error {
		for _, cb := range e.clusters {
			disks, err := disksFor(ctx, cb)
			if err != nil {
				return err
			}
			targets := make([]expire.LiveTarget, 0, len(disks))
			for _, d := range disks {
				targets = append(targets, expire.LiveTarget{Image: d.RBD, Destination: d.BackupTarget})
			}
			if err := expire.Live(ctx, cb.Live, e.backup, e.cfg.LockDir, e.cfg.Profiles, e.cfg.LiveWorker, targets, reporter); err != nil {
				return err
			}
		}
		return nil
	})
}

func (e *Engine) expireBackup(ctx context.Context) error {
	return runWithReporter(ctx, "images cleaned up on backup cluster", e.debug(), e.metrics, func(ctx context.Context, reporter *status.Reporter) error {
		images, err := e.backup.ListImages(ctx, e.cfg.Backup.Pool)
		if err != nil {
			return errors.Wrap(errors.ErrCodeTransientIO, "engine: list backup images", err)
		}
		return expire.Backup(ctx, e.backup, e.cfg.LockDir, e.cfg.Profiles, e.cfg.ExtraRetentionTime(), e.cfg.BackupWorker, images, reporter)
	})
}

// verifyTargets builds the per-cluster verify.Target lists every
// verification pass walks.
func (e *Engine) verifyTargets(ctx context.Context) (map[string][]verify.Target, error) {
	out := make(map[string][]verify.Target, len(e.clusters))
	for _, cb := range e.clusters {
		disks, err := disksFor(ctx, cb)
		if err != nil {
			return nil, err
		}
		targets := make([]verify.Target, 0, len(disks))
		for _, d := range disks {
			targets = append(targets, verify.Target{Cluster: cb.Name, Image: d.RBD, Destination: d.BackupTarget})
		}
		out[cb.Name] = targets
	}
	return out, nil
}

// PrecheckRun runs the freshness verification pass across every configured
// cluster, reconciles the results store, then reports exactly as CheckRun
// does (spec.md §6, `precheck`: "then behave as check"). A record inserted
// by this pass only trips exit 2 once it has survived StaleWindow, same as
// check.
func (e *Engine) PrecheckRun(ctx context.Context, w *Reporter) (int, error) {
	byCluster, err := e.verifyTargets(ctx)
	if err != nil {
		return 1, err
	}

	var fresh []store.Record
	for _, cb := range e.clusters {
		findings, err := verify.Freshness(ctx, cb.Live, e.backup, e.cfg.LiveWorker, byCluster[cb.Name], time.Now())
		if err != nil {
			return 1, errors.Wrap(errors.ErrCodeTransientIO, "engine: freshness check", err)
		}
		fresh = append(fresh, findingsToRecords(findings)...)
	}

	if err := e.store.Reconcile(ctx, fresh); err != nil {
		return 1, errors.Wrap(errors.ErrCodeFatal, "engine: reconcile results", err)
	}
	return e.CheckRun(ctx, w)
}

// CheckSnapRun runs the deep checksum comparison pass across every
// configured cluster, reconciles the results store, then reports exactly
// as CheckRun does (spec.md §6, `check-snap`: "then behave as check").
func (e *Engine) CheckSnapRun(ctx context.Context, w *Reporter) (int, error) {
	byCluster, err := e.verifyTargets(ctx)
	if err != nil {
		return 1, err
	}

	var fresh []store.Record
	for _, cb := range e.clusters {
		findings, err := verify.DeepCheck(ctx, cb.Live, e.backup, byCluster[cb.Name])
		if err != nil {
			return 1, errors.Wrap(errors.ErrCodeTransientIO, "engine: deep check", err)
		}
		fresh = append(fresh, findingsToRecords(findings)...)
	}

	if err := e.store.Reconcile(ctx, fresh); err != nil {
		return 1, errors.Wrap(errors.ErrCodeFatal, "engine: reconcile results", err)
	}
	return e.CheckRun(ctx, w)
}

// CheckRun reports every result-store record that has persisted past
// StaleWindow (spec.md §4.10, §6 `check`): exit 0 if none, 2 otherwise.
func (e *Engine) CheckRun(ctx context.Context, w *Reporter) (int, error) {
	stale, err := e.store.Stale(ctx, StaleWindow)
	if err != nil {
		return 1, errors.Wrap(errors.ErrCodeTransientIO, "engine: query stale results", err)
	}
	return reportRecords(w, stale), nil
}

// reportRecords prints one line per record and returns the subcommand
// exit code: 0 when records is empty, 2 otherwise.
func reportRecords(w *Reporter, records []store.Record) int {
	if len(records) == 0 {
		return 0
	}
	for _, r := range records {
		if r.FirstSeenEpoch > 0 {
			w.Printf("%s %s: %s (since %s)\n", r.Cluster, r.Image, r.Message, time.Unix(r.FirstSeenEpoch, 0).UTC().Format(time.RFC3339))
			continue
		}
		w.Printf("%s %s: %s\n", r.Cluster, r.Image, r.Message)
	}
	return 2
}

func findingsToRecords(findings []verify.Finding) []store.Record {
	out := make([]store.Record, 0, len(findings))
	for _, f := range findings {
		out = append(out, store.Record{Cluster: f.Cluster, Image: f.Image, Message: f.Message})
	}
	return out
}

// Reporter is the minimal sink CheckRun prints through. Build one with
// NewReporter from any writer, such as *os.File or *bytes.Buffer.
type Reporter struct {
	write func(format string, args ...any)
}

// NewReporter wraps a fmt.Fprintf-style sink (e.g. os.Stdout) for CheckRun
// output.
func NewReporter(sink interface {
	Write([]byte) (int, error)
}) *Reporter {
	return &Reporter{write: func(format string, args ...any) {
		fmt.Fprintf(sink, format, args...)
	}}
}

// Printf writes one formatted line.
func (r *Reporter) Printf(format string, args ...any) {
	r.write(format, args...)
}
