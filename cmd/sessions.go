package cmd

import (
	"fmt"
	"strconv"
	"time"

	"summa/application"
	"summa/config"
	"summa/database"
	"summa/domain/entities"
	"summa/domain/services"
	"summa/infrastructure"
	"summa/live"
	"summa/repository"

	"github.com/dustin/go-humanize"
	"github.com/mergestat/timediff"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var sessionsCmdFlags struct {
	Username string
	Limit    int
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Show recent game sessions of a user",
	Long:  `Print the most recent game sessions a user created or played in, with their buy-ins and result.`,
	Example: `summa sessions --username alice
  summa sessions --username alice --limit 25`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		cfg := config.Get()

		db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		uowFactory := infrastructure.NewUnitOfWorkFactory(repository.NewUnitOfWorkFactory(db), infrastructure.NewNoopEventPublisher(), nil)
		gameSessionService := services.NewGameSessionService(uowFactory)
		hooks := application.NewHooks(live.NewHub(nil), gameSessionService, services.NewPlayerService(uowFactory, cfg.InitialStackBb), services.NewUserService(uowFactory))

		user, err := hooks.Users().GetByUsername(ctx, sessionsCmdFlags.Username)
		if err != nil {
			return err
		}
		if user == nil {
			return &entities.NotFoundError{Resource: "user", Key: sessionsCmdFlags.Username}
		}

		sessions, err := gameSessionService.ListForUser(ctx, user.ID, sessionsCmdFlags.Limit)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			pterm.Info.Printfln("%s has not played yet", user.Username)
			return nil
		}

		summaries := make([]*entities.SessionSummary, len(sessions))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(4)
		for i, session := range sessions {
			g.Go(func() error {
				summary, err := hooks.GameSessions().Summary(gctx, session.ID)
				if err != nil {
					return fmt.Errorf("failed to summarize game session %s: %w", session.ID, err)
				}
				summaries[i] = summary
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		pterm.DefaultSection.Printfln("Sessions of %s", user.Name)
		return pterm.DefaultTable.WithHasHeader().WithData(sessionsTable(user.ID, summaries, time.Now())).Render()
	},
}

func init() {
	sessionsCmd.Flags().StringVarP(&sessionsCmdFlags.Username, "username", "u", "", "Username to report on")
	sessionsCmd.Flags().IntVarP(&sessionsCmdFlags.Limit, "limit", "n", 10, "Number of sessions to show")
	_ = sessionsCmd.MarkFlagRequired("username")
	rootCmd.AddCommand(sessionsCmd)
}

// sessionsTable renders one row per session from userID's point of view
func sessionsTable(userID string, summaries []*entities.SessionSummary, now time.Time) pterm.TableData {
	data := pterm.TableData{{"Session", "Started", "Duration", "Players", "Buy-ins", "Result (bb)", "Result"}}

	for _, summary := range summaries {
		if summary == nil {
			continue
		}
		session := summary.Session

		status := timediff.TimeDiff(session.StartedAt, timediff.WithStartTime(now))
		if session.IsOngoing() {
			status += " (running)"
		}

		buyins, diffBb, result := "-", "-", "-"
		for _, player := range summary.Players {
			if player.UserID != userID {
				continue
			}
			buyins = strconv.Itoa(player.Buyins)
			diffBb = signed(player.DiffBb, 1)
			result = signed(player.Result, 2)
		}

		data = append(data, []string{
			session.Name,
			status,
			session.Duration(now).Round(time.Minute).String(),
			strconv.Itoa(len(summary.Players)),
			buyins,
			diffBb,
			result,
		})
	}
	return data
}

func signed(v float64, decimals int) string {
	s := humanize.CommafWithDigits(v, decimals)
	if v > 0 {
		return "+" + s
	}
	return s
}
