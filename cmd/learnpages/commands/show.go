package commands

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/learnpages/internal/app"
	"github.com/yungbote/learnpages/internal/pages"
	"github.com/yungbote/learnpages/internal/platform/ctxutil"
	"github.com/yungbote/learnpages/internal/services"
)

func showCmd() *cobra.Command {
	var learner, locale string
	cmd := &cobra.Command{
		Use:   "show <page> [args]",
		Short: "Run one page pipeline and print the resulting state",
		Long: `Pages:
  classes                     all classes of the learner
  class <class-id>            assignments of one class
  lesson <lesson-id>          lesson playlist with progress
  resource <lesson-id> <n>    the n-th resource of a lesson`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			intent, err := parseIntent(args)
			if err != nil {
				return err
			}
			rd := &ctxutil.RequestData{SessionID: uuid.New(), Locale: locale}
			if learner != "" {
				if rd.LearnerID, err = uuid.Parse(learner); err != nil {
					return fmt.Errorf("--learner: %w", err)
				}
			}

			ctx, stop := withSignals(cmd)
			defer stop()
			a, err := app.New(ctx, log, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx = ctxutil.WithRequestData(ctx, rd)
			state, showErr := a.Services.Page.Show(ctx, intent, services.ShowOptions{AwaitProgress: true})
			out, err := json.MarshalIndent(state, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return showErr
		},
	}
	cmd.Flags().StringVar(&learner, "learner", "", "learner id (anonymous when empty)")
	cmd.Flags().StringVar(&locale, "locale", "", "locale for page titles")
	return cmd
}

func parseIntent(args []string) (pages.Intent, error) {
	page := strings.ToLower(strings.TrimSpace(args[0]))
	rest := args[1:]
	want := func(n int) error {
		if len(rest) != n {
			return fmt.Errorf("%s: want %d argument(s), got %d", page, n, len(rest))
		}
		return nil
	}
	switch page {
	case "classes", "all_classes":
		if err := want(0); err != nil {
			return pages.Intent{}, err
		}
		return pages.AllClasses(), nil
	case "class", "class_assignments":
		if err := want(1); err != nil {
			return pages.Intent{}, err
		}
		id, err := uuid.Parse(rest[0])
		if err != nil {
			return pages.Intent{}, fmt.Errorf("class id: %w", err)
		}
		return pages.ClassAssignments(id), nil
	case "lesson", "lesson_playlist":
		if err := want(1); err != nil {
			return pages.Intent{}, err
		}
		id, err := uuid.Parse(rest[0])
		if err != nil {
			return pages.Intent{}, fmt.Errorf("lesson id: %w", err)
		}
		return pages.LessonPlaylist(id), nil
	case "resource", "lesson_resource_viewer":
		if err := want(2); err != nil {
			return pages.Intent{}, err
		}
		id, err := uuid.Parse(rest[0])
		if err != nil {
			return pages.Intent{}, fmt.Errorf("lesson id: %w", err)
		}
		index, err := strconv.Atoi(rest[1])
		if err != nil || index < 0 {
			return pages.Intent{}, fmt.Errorf("resource index %q: must be a non-negative integer", rest[1])
		}
		return pages.LessonResourceViewer(id, index), nil
	default:
		return pages.Intent{}, fmt.Errorf("unknown page %q", args[0])
	}
}
