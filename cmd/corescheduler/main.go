package main

import (
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	_ "go.uber.org/automaxprocs"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/opsframework/corescheduler/config"
	"github.com/opsframework/corescheduler/logging"
	"github.com/opsframework/corescheduler/offer"
	"github.com/opsframework/corescheduler/resourcemanager"
	"github.com/opsframework/corescheduler/run"
	"github.com/opsframework/corescheduler/scheduler"
	"github.com/opsframework/corescheduler/specstore"
)

var (
	app = kingpin.New("corescheduler", "Multi-tenant workload scheduler core")

	debug = app.Flag("debug", "enable debug logging").
		Short('d').
		Default("false").
		Envar("ENABLE_DEBUG_LOGGING").
		Bool()

	jsonLog = app.Flag("json-log", "emit logs as JSON").
		Default("false").
		Bool()

	cfgFiles = app.Flag("config", "YAML config files (repeat to merge configs)").
			Short('c').
			Required().
			ExistingFiles()

	frameworkUninstall = app.Flag("uninstall", "put the entire framework into uninstall mode").
				Default("false").
				Bool()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	level := "info"
	if *debug {
		level = "debug"
	}
	logging.Setup(level, *jsonLog)

	cfg, err := config.Load(*cfgFiles)
	if err != nil {
		log.WithError(err).Error("failed to load configuration")
		os.Exit(offer.ExitInitFailure)
	}

	persister, err := specstore.OpenBoltPersister(cfg.Storage.BoltPath)
	if err != nil {
		log.WithError(err).Error("failed to open storage")
		os.Exit(offer.ExitStorageLockUnavailable)
	}
	defer persister.Close()

	store := specstore.New(persister)
	frameworkIDs := resourcemanager.NewBoltFrameworkInfoStore(persister.DB())

	driver := newMesosDriver(cfg.Mesos)

	sched := scheduler.New(scheduler.Options{
		QueueCapacity:      cfg.Scheduler.OfferQueueCapacity,
		Driver:             driver,
		FrameworkUninstall: cfg.Scheduler.FrameworkUninstall || *frameworkUninstall,
		UninstallCallback: func(name string) {
			log.WithField("run", name).Info("run finished uninstalling")
		},
		SpecStore: store,
		// No concrete workload-spec types are registered here: the
		// submission schema behind a generator is owned by the layer
		// that defines PlanCoordinator, which is out of this core's
		// scope. A production deployment registers its own types
		// before calling scheduler.New.
		Generators:   run.Generators{},
		FrameworkIDs: frameworkIDs,
	})

	sched.Start()
	defer sched.Stop()

	log.Info("corescheduler started")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("corescheduler shutting down")
}
