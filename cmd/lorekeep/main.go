// Command lorekeep is a small admin CLI for the campaign store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/lorekeep/lorekeep/internal/artifact"
	"github.com/lorekeep/lorekeep/internal/campaign"
	"github.com/lorekeep/lorekeep/internal/dice"
	"github.com/lorekeep/lorekeep/internal/platform/config"
	"github.com/lorekeep/lorekeep/internal/platform/logging"
	"github.com/lorekeep/lorekeep/internal/player"
	"github.com/lorekeep/lorekeep/internal/session"
	"github.com/lorekeep/lorekeep/internal/storage"
)

const usage = `usage: lorekeep <command> [flags]

commands:
  campaign create   -name NAME -system SYSTEM [-desc TEXT] [-by PLAYER_ID]
  campaign list
  player create     -username NAME [-display NAME] [-email EMAIL]
  player list
  member add        -campaign ID -player ID [-role ROLE] [-character ID]
  session start     -campaign ID -by PLAYER_ID [-name NAME] [-notes TEXT]
  session end       -campaign ID -session ID
  dice roll         -expr EXPRESSION [-seed N]
`

type app struct {
	campaigns *campaign.Service
	players   *player.Service
	sessions  *session.Service
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("load configuration: %v", err)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		config.Exitf("build logger: %v", err)
	}
	defer logger.Sync()

	store, err := storage.Open(cfg.CampaignsDir, cfg.PlayersDir)
	if err != nil {
		config.Exitf("open store: %v", err)
	}
	a := &app{
		campaigns: campaign.NewService(store, logger),
		players:   player.NewService(store, logger),
		sessions:  session.NewService(store, logger),
	}

	if len(os.Args) < 3 {
		config.Exitf(usage)
	}
	ctx := context.Background()
	command := os.Args[1] + " " + os.Args[2]
	args := os.Args[3:]

	switch command {
	case "campaign create":
		err = a.campaignCreate(ctx, args)
	case "campaign list":
		err = a.campaignList(ctx)
	case "player create":
		err = a.playerCreate(ctx, args)
	case "player list":
		err = a.playerList(ctx)
	case "member add":
		err = a.memberAdd(ctx, args)
	case "session start":
		err = a.sessionStart(ctx, args)
	case "session end":
		err = a.sessionEnd(ctx, args)
	case "dice roll":
		err = diceRoll(args)
	default:
		config.Exitf(usage)
	}
	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		config.Exitf("%v", err)
	}
}

func (a *app) campaignCreate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("campaign create", flag.ExitOnError)
	name := fs.String("name", "", "campaign name")
	system := fs.String("system", "", "rule system")
	desc := fs.String("desc", "", "description")
	by := fs.String("by", "", "creating player id")
	fs.Parse(args)

	c, err := a.campaigns.Create(ctx, campaign.CreateInput{
		Name:        *name,
		RuleSystem:  *system,
		Description: *desc,
		CreatedBy:   *by,
	})
	if err != nil {
		return err
	}
	fmt.Println(c.Metadata.ID)
	return nil
}

func (a *app) campaignList(ctx context.Context) error {
	campaigns, err := a.campaigns.List(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSYSTEM\tSTATUS")
	for _, c := range campaigns {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Metadata.ID, c.Name, c.RuleSystem, c.Status)
	}
	return w.Flush()
}

func (a *app) playerCreate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("player create", flag.ExitOnError)
	username := fs.String("username", "", "unique username")
	display := fs.String("display", "", "display name")
	email := fs.String("email", "", "email address")
	fs.Parse(args)

	if *display == "" {
		*display = *username
	}
	p, err := a.players.Create(ctx, player.CreateInput{
		Username:    *username,
		DisplayName: *display,
		Email:       *email,
	})
	if err != nil {
		return err
	}
	fmt.Println(p.Metadata.ID)
	return nil
}

func (a *app) playerList(ctx context.Context) error {
	players, err := a.players.List(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tDISPLAY\tSTATUS")
	for _, p := range players {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Metadata.ID, p.Username, p.DisplayName, p.Status)
	}
	return w.Flush()
}

func (a *app) memberAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("member add", flag.ExitOnError)
	campaignID := fs.String("campaign", "", "campaign id")
	playerID := fs.String("player", "", "player id")
	role := fs.String("role", string(artifact.RolePlayer), "membership role")
	characterID := fs.String("character", "", "default character id")
	fs.Parse(args)

	m, err := a.campaigns.AddPlayer(ctx, *campaignID, *playerID, artifact.MembershipRole(*role), *characterID)
	if err != nil {
		return err
	}
	fmt.Println(m.Metadata.ID)
	return nil
}

func (a *app) sessionStart(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("session start", flag.ExitOnError)
	campaignID := fs.String("campaign", "", "campaign id")
	by := fs.String("by", "", "starting player id")
	name := fs.String("name", "", "session name")
	notes := fs.String("notes", "", "session notes")
	fs.Parse(args)

	sess, err := a.sessions.Create(ctx, *campaignID, session.CreateInput{
		StartedBy: *by,
		Name:      *name,
		Notes:     *notes,
	})
	if err != nil {
		return err
	}
	fmt.Printf("%s session %d\n", sess.Metadata.ID, sess.SessionNumber)
	return nil
}

func (a *app) sessionEnd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("session end", flag.ExitOnError)
	campaignID := fs.String("campaign", "", "campaign id")
	sessionID := fs.String("session", "", "session id")
	fs.Parse(args)

	sess, err := a.sessions.End(ctx, *campaignID, *sessionID)
	if err != nil {
		return err
	}
	fmt.Printf("session %d ended at %s\n", sess.SessionNumber, sess.EndedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func diceRoll(args []string) error {
	fs := flag.NewFlagSet("dice roll", flag.ExitOnError)
	expr := fs.String("expr", "", "dice expression, e.g. 2d6+3")
	seed := fs.Int64("seed", 0, "seed for a reproducible roll")
	fs.Parse(args)

	if *seed == 0 {
		var err error
		*seed, err = dice.NewSeed()
		if err != nil {
			return err
		}
	}
	result, err := dice.Roll(*expr, *seed, time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("%s = %d [seed %s]\n", result.Breakdown, result.Total, result.Seed)
	return nil
}
