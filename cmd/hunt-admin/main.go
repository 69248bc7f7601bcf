// Command hunt-admin is an administrative CLI over the geohunt core: it
// invokes the public service operations against the configured store backend.
//
// Configuration comes from the environment (GEOHUNT_BACKEND, GEOHUNT_ROOT,
// GEOHUNT_SCHEMA, GEOHUNT_DSN, GEOHUNT_BADGER_DIR); the operation and its
// arguments come from the command line. Ids are caller-supplied; verbs that
// create entities generate a UUID when the id argument is omitted.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/geohunt/internal/config"
	"github.com/and161185/geohunt/internal/entity"
	"github.com/and161185/geohunt/internal/legacy"
	"github.com/and161185/geohunt/internal/migrate"
	"github.com/and161185/geohunt/internal/model"
	"github.com/and161185/geohunt/internal/pathstore"
	"github.com/and161185/geohunt/internal/pathstore/badgerstore"
	"github.com/and161185/geohunt/internal/pathstore/postgres"
	"github.com/and161185/geohunt/internal/service"
)

// app holds the service set for the configured schema generation. Exactly
// one of the generation pairs is populated.
type app struct {
	artifacts service.ArtifactService

	users    service.UserService
	sessions service.SessionService

	legacyUsers    legacy.UserService
	legacySessions legacy.SessionService
	teams          legacy.TeamService
}

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("open store", zap.String("backend", cfg.Backend), zap.Error(err))
	}
	defer closeStore()

	ent := entity.NewClient(pathstore.Namespace(store, cfg.Root))
	a := &app{artifacts: service.NewArtifactService(ent)}
	if cfg.Schema == config.SchemaV1 {
		a.legacyUsers = legacy.NewUserService(ent)
		a.legacySessions = legacy.NewSessionService(ent)
		a.teams = legacy.NewTeamService(ent)
	} else {
		a.users = service.NewUserService(ent)
		a.sessions = service.NewSessionService(ent)
	}

	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}
	if err := a.run(ctx, args[0], args[1:]); err != nil {
		logger.Fatal("operation failed",
			zap.String("verb", args[0]),
			zap.String("schema", cfg.Schema),
			zap.Error(err),
		)
	}
}

// openStore builds the configured backend. The postgres backend applies
// pending migrations first.
func openStore(ctx context.Context, cfg *config.Config) (pathstore.Store, func(), error) {
	switch cfg.Backend {
	case config.BackendBadger:
		s, err := badgerstore.Open(cfg.BadgerDir)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case config.BackendPostgres:
		if err := migrate.Up(ctx, cfg.DSN); err != nil {
			return nil, nil, err
		}
		s, err := postgres.New(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return pathstore.NewMemory(), func() {}, nil
	}
}

var errSchema = errors.New("verb not supported by the configured schema generation")

func (a *app) run(ctx context.Context, verb string, args []string) error {
	switch verb {
	case "create-user":
		id := idArg(args, 0)
		if err := a.createUser(ctx, id); err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	case "create-session":
		if err := needArgs(args, 1, "<creatorId> [id]"); err != nil {
			return err
		}
		id := idArg(args, 1)
		if err := a.createSession(ctx, id, args[0]); err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	case "create-artifact":
		id := idArg(args, 0)
		if err := a.artifacts.Create(ctx, id); err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	case "create-team":
		if a.teams == nil {
			return errSchema
		}
		id := idArg(args, 0)
		if err := a.teams.Create(ctx, id); err != nil {
			return err
		}
		fmt.Println(id)
		return nil

	case "get-user":
		if err := needArgs(args, 1, "<userId>"); err != nil {
			return err
		}
		if a.users != nil {
			return printJSON(a.users.Get(ctx, args[0]))
		}
		return printJSON(a.legacyUsers.Get(ctx, args[0]))
	case "get-session":
		if err := needArgs(args, 1, "<sessionId>"); err != nil {
			return err
		}
		if a.sessions != nil {
			return printJSON(a.sessions.Get(ctx, args[0]))
		}
		return printJSON(a.legacySessions.Get(ctx, args[0]))
	case "get-artifact":
		if err := needArgs(args, 1, "<artifactId>"); err != nil {
			return err
		}
		return printJSON(a.artifacts.Get(ctx, args[0]))
	case "get-team":
		if a.teams == nil {
			return errSchema
		}
		if err := needArgs(args, 1, "<teamId>"); err != nil {
			return err
		}
		return printJSON(a.teams.Get(ctx, args[0]))

	case "join":
		if err := needArgs(args, 2, "<userId> <sessionId>"); err != nil {
			return err
		}
		if a.users != nil {
			return a.users.AddToSession(ctx, args[0], args[1])
		}
		return a.legacyUsers.AddToSession(ctx, args[0], args[1])
	case "leave":
		if err := needArgs(args, 2, "<userId> <sessionId>"); err != nil {
			return err
		}
		if a.users != nil {
			return a.users.RemoveFromSession(ctx, args[0], args[1])
		}
		return a.legacyUsers.RemoveFromSession(ctx, args[0], args[1])
	case "set-current-session":
		if err := needArgs(args, 1, "<userId> [sessionId]"); err != nil {
			return err
		}
		sid := ""
		if len(args) > 1 {
			sid = args[1]
		}
		if a.users != nil {
			return a.users.SetCurrentSession(ctx, args[0], sid)
		}
		return a.legacyUsers.SetCurrentSession(ctx, args[0], sid)

	case "set-times":
		if err := needArgs(args, 3, "<sessionId> <start> <end>"); err != nil {
			return err
		}
		start, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("start: %w", err)
		}
		end, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return fmt.Errorf("end: %w", err)
		}
		if a.sessions != nil {
			return a.sessions.SetTimes(ctx, args[0], start, end)
		}
		return a.legacySessions.SetTimes(ctx, args[0], start, end)
	case "set-game-state":
		if a.sessions == nil {
			return errSchema
		}
		if err := needArgs(args, 2, "<sessionId> <LOBBY|ACTIVE|PAUSED|FINISHED>"); err != nil {
			return err
		}
		return a.sessions.SetGameState(ctx, args[0], model.GameState(args[1]))
	case "set-active":
		if a.legacySessions == nil {
			return errSchema
		}
		if err := needArgs(args, 2, "<sessionId> <true|false>"); err != nil {
			return err
		}
		active, err := strconv.ParseBool(args[1])
		if err != nil {
			return err
		}
		return a.legacySessions.SetActive(ctx, args[0], active)

	case "add-artifact":
		if err := needArgs(args, 2, "<sessionId> <artifactId>"); err != nil {
			return err
		}
		if a.sessions != nil {
			return a.sessions.AddArtifact(ctx, args[0], args[1])
		}
		return a.legacySessions.AddArtifact(ctx, args[0], args[1])
	case "remove-artifact":
		if err := needArgs(args, 2, "<sessionId> <artifactId>"); err != nil {
			return err
		}
		if a.sessions != nil {
			return a.sessions.RemoveArtifact(ctx, args[0], args[1])
		}
		return a.legacySessions.RemoveArtifact(ctx, args[0], args[1])

	case "add-found":
		if err := needArgs(args, 3, "<sessionId> <userId> <artifactId>"); err != nil {
			return err
		}
		if a.sessions != nil {
			return a.sessions.AddFoundArtifact(ctx, args[0], args[1], args[2])
		}
		return a.legacyUsers.AddFoundArtifact(ctx, args[1], args[0], args[2])
	case "remove-found":
		if err := needArgs(args, 3, "<sessionId> <userId> <artifactId>"); err != nil {
			return err
		}
		if a.sessions != nil {
			return a.sessions.RemoveFoundArtifact(ctx, args[0], args[1], args[2])
		}
		return a.legacyUsers.RemoveFoundArtifact(ctx, args[1], args[0], args[2])
	case "set-points":
		if err := needArgs(args, 3, "<sessionId> <userId> <points>"); err != nil {
			return err
		}
		points, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return err
		}
		if a.sessions != nil {
			return a.sessions.SetPoints(ctx, args[0], args[1], points)
		}
		return a.legacyUsers.UpdatePoints(ctx, args[1], args[0], points)
	case "add-points":
		if a.sessions == nil {
			return errSchema
		}
		if err := needArgs(args, 3, "<sessionId> <userId> <delta>"); err != nil {
			return err
		}
		delta, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil {
			return err
		}
		return a.sessions.AddPoints(ctx, args[0], args[1], delta)

	case "add-team":
		if a.legacySessions == nil {
			return errSchema
		}
		if err := needArgs(args, 2, "<sessionId> <teamId>"); err != nil {
			return err
		}
		return a.legacySessions.AddTeam(ctx, args[0], args[1])
	case "remove-team":
		if a.legacySessions == nil {
			return errSchema
		}
		if err := needArgs(args, 2, "<sessionId> <teamId>"); err != nil {
			return err
		}
		return a.legacySessions.RemoveTeam(ctx, args[0], args[1])
	case "add-member":
		if a.teams == nil {
			return errSchema
		}
		if err := needArgs(args, 2, "<teamId> <userId>"); err != nil {
			return err
		}
		return a.teams.AddMember(ctx, args[0], args[1])
	case "remove-member":
		if a.teams == nil {
			return errSchema
		}
		if err := needArgs(args, 2, "<teamId> <userId>"); err != nil {
			return err
		}
		return a.teams.RemoveMember(ctx, args[0], args[1])

	case "list-participants":
		if err := needArgs(args, 1, "<sessionId>"); err != nil {
			return err
		}
		if a.sessions != nil {
			return printList(a.sessions.ListParticipants(ctx, args[0]))
		}
		return printList(a.legacySessions.ListParticipants(ctx, args[0]))
	case "list-artifacts":
		if err := needArgs(args, 1, "<sessionId>"); err != nil {
			return err
		}
		if a.sessions != nil {
			return printList(a.sessions.ListArtifacts(ctx, args[0]))
		}
		return printList(a.legacySessions.ListArtifacts(ctx, args[0]))
	case "list-teams":
		if a.legacySessions == nil {
			return errSchema
		}
		if err := needArgs(args, 1, "<sessionId>"); err != nil {
			return err
		}
		return printList(a.legacySessions.ListTeams(ctx, args[0]))
	case "list-members":
		if a.teams == nil {
			return errSchema
		}
		if err := needArgs(args, 1, "<teamId>"); err != nil {
			return err
		}
		return printList(a.teams.ListMembers(ctx, args[0]))
	case "list-sessions":
		if err := needArgs(args, 1, "<userId>"); err != nil {
			return err
		}
		if a.users != nil {
			return printList(a.users.ListSessions(ctx, args[0]))
		}
		return printList(a.legacyUsers.ListSessions(ctx, args[0]))

	case "delete-user":
		if err := needArgs(args, 1, "<userId>"); err != nil {
			return err
		}
		if a.users != nil {
			return a.users.Delete(ctx, args[0])
		}
		return a.legacyUsers.Delete(ctx, args[0])
	case "delete-session":
		if err := needArgs(args, 1, "<sessionId>"); err != nil {
			return err
		}
		if a.sessions != nil {
			return a.sessions.Delete(ctx, args[0])
		}
		return a.legacySessions.Delete(ctx, args[0])
	case "delete-artifact":
		if err := needArgs(args, 1, "<artifactId>"); err != nil {
			return err
		}
		return a.artifacts.Delete(ctx, args[0])
	case "delete-team":
		if a.teams == nil {
			return errSchema
		}
		if err := needArgs(args, 1, "<teamId>"); err != nil {
			return err
		}
		return a.teams.Delete(ctx, args[0])

	default:
		usage()
		return fmt.Errorf("unknown verb %q", verb)
	}
}

func (a *app) createUser(ctx context.Context, id string) error {
	if a.users != nil {
		return a.users.Create(ctx, id)
	}
	return a.legacyUsers.Create(ctx, id)
}

func (a *app) createSession(ctx context.Context, id, creatorID string) error {
	if a.sessions != nil {
		return a.sessions.Create(ctx, id, creatorID)
	}
	return a.legacySessions.Create(ctx, id, creatorID)
}

// idArg returns args[i] when present, otherwise a fresh UUID.
func idArg(args []string, i int) string {
	if len(args) > i && args[i] != "" {
		return args[i]
	}
	return uuid.Must(uuid.NewV4()).String()
}

func needArgs(args []string, n int, usage string) error {
	if len(args) < n {
		return fmt.Errorf("expected arguments: %s", usage)
	}
	return nil
}

func printJSON(v any, err error) error {
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func printList(items []string, err error) error {
	if err != nil {
		return err
	}
	for _, it := range items {
		fmt.Println(it)
	}
	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: hunt-admin <verb> [args]

entities:
  create-user [id]                    create-session <creatorId> [id]
  create-artifact [id]                create-team [id]                (v1)
  get-user|get-session|get-artifact|get-team <id>
  delete-user|delete-session|delete-artifact|delete-team <id>

membership:
  join <userId> <sessionId>           leave <userId> <sessionId>
  set-current-session <userId> [sessionId]
  list-sessions <userId>              list-participants <sessionId>

sessions:
  set-times <sessionId> <start> <end>
  set-game-state <sessionId> <state>  (v2)
  set-active <sessionId> <bool>       (v1)
  add-artifact|remove-artifact <sessionId> <artifactId>
  list-artifacts <sessionId>

scoring:
  add-found|remove-found <sessionId> <userId> <artifactId>
  set-points <sessionId> <userId> <points>
  add-points <sessionId> <userId> <delta>   (v2)

teams (v1):
  add-team|remove-team <sessionId> <teamId>
  add-member|remove-member <teamId> <userId>
  list-teams <sessionId>              list-members <teamId>

environment: GEOHUNT_BACKEND=memory|badger|postgres GEOHUNT_ROOT=<namespace>
             GEOHUNT_SCHEMA=v1|v2 GEOHUNT_DSN=<postgres dsn> GEOHUNT_BADGER_DIR=<dir>`)
}
