// Package dig_container wires the API dependencies with go.uber.org/dig.
package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/cache"
	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/liveclass"
	"github.com/trezcool/darasa/core/notify"
	"github.com/trezcool/darasa/core/profile"
	emailsvc "github.com/trezcool/darasa/services/email"
	"github.com/trezcool/darasa/services/filestore"
	logsvc "github.com/trezcool/darasa/services/logger"
	"github.com/trezcool/darasa/storage/cache/boltcache"
	"github.com/trezcool/darasa/storage/cache/memcache"
	"github.com/trezcool/darasa/storage/database"
	"github.com/trezcool/darasa/storage/database/sqlxrepos"
)

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	serverParams struct {
		dig.In
		Conf          *core.Config
		Logger        core.Logger
		ClassroomSvc  *classroom.Service
		AssignmentSvc *assignment.Service
		LiveClassSvc  *liveclass.Service
		ProfileSvc    *profile.Service
		Files         core.FileStore
		Email         core.EmailService
		Validate      *validator.Validate
		Translator    ut.Translator
	}
)

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

// newStore opens the local cache. It must work: it is what answers when the database does not.
func newStore(conf *core.Config) (cache.Store, error) {
	switch conf.Cache.Driver {
	case "memory":
		return memcache.New(), nil
	case "bolt", "":
		return boltcache.Open(conf.Cache.Path)
	default:
		return nil, errors.Errorf("unknown cache driver %q", conf.Cache.Driver)
	}
}

// newDB returns nil only when the database is disabled. Otherwise the handle is
// returned at once, even if the server is down: each remote call fails on its own
// and the services fall back to the local cache. See PrepareDB.
func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	if !conf.Database.Enabled {
		loggerParam.Logger.Info("database disabled: running on the local cache")
		return nil
	}

	db, err := database.Connect(conf)
	if err != nil {
		loggerParam.Logger.Error(fmt.Sprintf("connecting to database, running on the local cache: %v", err), err)
		return nil
	}
	return db
}

// PrepareDB creates and migrates the database, retrying until it succeeds or ctx is done.
// It reports whether the database ended up ready.
func PrepareDB(ctx context.Context, conf *core.Config, db *sqlx.DB, logger core.Logger, retryDelay time.Duration) bool {
	for {
		err := database.Prepare(ctx, conf, db)
		if err == nil {
			logger.Info("database ready")
			return true
		}
		logger.Warn(fmt.Sprintf("preparing database, retrying in %v: %v", retryDelay, err))

		select {
		case <-ctx.Done():
			return false
		case <-time.After(retryDelay):
		}
	}
}

func newProfileService(db *sqlx.DB, store cache.Store, logger core.Logger) *profile.Service {
	var remote profile.Remote
	if db != nil {
		remote = sqlxrepos.NewProfileRepository(db)
	}
	return profile.NewService(remote, store, logger)
}

func newClassroomService(
	db *sqlx.DB,
	store cache.Store,
	profiles *profile.Service,
	logger core.Logger,
	conf *core.Config,
) *classroom.Service {
	var remote classroom.Remote
	if db != nil {
		remote = sqlxrepos.NewClassroomRepository(db)
	}
	return classroom.NewService(remote, store, profiles, logger, conf)
}

func newAssignmentService(db *sqlx.DB, store cache.Store, logger core.Logger) *assignment.Service {
	var remote assignment.Remote
	if db != nil {
		remote = sqlxrepos.NewAssignmentRepository(db)
	}
	return assignment.NewService(remote, store, logger)
}

func newLiveClassService(db *sqlx.DB, store cache.Store, logger core.Logger, notifier liveclass.Notifier) *liveclass.Service {
	var remote liveclass.Remote
	if db != nil {
		remote = sqlxrepos.NewLiveClassRepository(db)
	}
	svc := liveclass.NewService(remote, store, logger)
	svc.SetNotifier(notifier)
	return svc
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newFileStore(conf *core.Config) (core.FileStore, error) {
	return filestore.New(context.Background(), conf)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:          p.Conf,
		Logger:        p.Logger,
		ClassroomSvc:  p.ClassroomSvc,
		AssignmentSvc: p.AssignmentSvc,
		LiveClassSvc:  p.LiveClassSvc,
		ProfileSvc:    p.ProfileSvc,
		Files:         p.Files,
		Email:         p.Email,
		Validate:      p.Validate,
		Translator:    p.Translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStore))
	must(c.Provide(newDB))
	must(c.Provide(newEmailService))
	must(c.Provide(newFileStore))
	must(c.Provide(newProfileService))
	must(c.Provide(newClassroomService))
	must(c.Provide(newAssignmentService))
	must(c.Provide(notify.NewLiveClassMailer, dig.As(new(liveclass.Notifier))))
	must(c.Provide(newLiveClassService))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
