package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fastygo/goaltracker/domain"
	"github.com/fastygo/goaltracker/internal/store"
	"github.com/fastygo/goaltracker/internal/timeline"
)

func statsCmd(open openFunc, opts *openOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show goal, productivity and sleep statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, open, opts, func(s *store.Store) error {
				printStats(cmd.OutOrStdout(), s)
				return nil
			})
		},
	}
}

func printStats(w io.Writer, s *store.Store) {
	fmt.Fprintln(w, "Goal Tracker Status")
	fmt.Fprintln(w, strings.Repeat("=", 40))

	byStatus := make(map[domain.GoalStatus]int)
	archived := 0
	goals := s.Goals()
	for _, g := range goals {
		byStatus[g.Status]++
		if g.IsArchived {
			archived++
		}
	}
	fmt.Fprintln(w, "\nGoals:")
	fmt.Fprintf(w, "  Total:       %d\n", len(goals))
	fmt.Fprintf(w, "  Not started: %d\n", byStatus[domain.GoalNotStarted])
	fmt.Fprintf(w, "  In progress: %d\n", byStatus[domain.GoalInProgress])
	fmt.Fprintf(w, "  Completed:   %d\n", byStatus[domain.GoalCompleted])
	fmt.Fprintf(w, "  Archived:    %d\n", archived)

	tasks := s.Tasks()
	done := 0
	for _, t := range tasks {
		if t.IsCompleted {
			done++
		}
	}
	fmt.Fprintln(w, "\nTasks:")
	fmt.Fprintf(w, "  Total:       %d\n", len(tasks))
	fmt.Fprintf(w, "  Completed:   %d\n", done)

	p := s.TodayProductivity()
	fmt.Fprintln(w, "\nToday:")
	fmt.Fprintf(w, "  Date:        %s\n", p.Date)
	fmt.Fprintf(w, "  Minutes:     %d (%d%% of waking hours)\n", p.TodayMinutes, p.Percentage)
	fmt.Fprintf(w, "  This week:   %d min, %d min/day\n", p.WeekMinutes, p.DailyAverage)
	for _, g := range p.TopGoals {
		fmt.Fprintf(w, "    %-24s %d min\n", valueOrDefault(g.Title, g.GoalID), g.Minutes)
	}

	sl := s.SleepStats()
	fmt.Fprintln(w, "\nSleep:")
	if sl.LoggedDays == 0 {
		fmt.Fprintln(w, "  No sleep logged")
		return
	}
	fmt.Fprintf(w, "  Average:     %d min\n", sl.AverageSleepDuration)
	fmt.Fprintf(w, "  Bedtime:     %s\n", valueOrDefault(sl.AverageSleepTime, "-"))
	fmt.Fprintf(w, "  Wake up:     %s\n", valueOrDefault(sl.AverageWakeUpTime, "-"))
	fmt.Fprintf(w, "  Mood:        %.1f\n", sl.AverageMood)
	fmt.Fprintf(w, "  Debt:        %d min\n", sl.SleepDebtMinutes)
	fmt.Fprintf(w, "  Streak:      %d days\n", sl.StreakDays)
}

func goalsCmd(open openFunc, opts *openOptions) *cobra.Command {
	var includeArchived bool
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "List goals with their progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, open, opts, func(s *store.Store) error {
				w := cmd.OutOrStdout()
				for _, g := range s.Goals() {
					if g.IsArchived && !includeArchived {
						continue
					}
					fmt.Fprintf(w, "%-36s %-13s %-11s %3d%%  %s\n",
						g.ID, g.Level, g.Status, s.GoalProgress(g.ID), g.Title)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&includeArchived, "all", "a", false, "include archived goals")
	return cmd
}

func timelineCmd(open openFunc, opts *openOptions) *cobra.Command {
	var (
		limit  int
		goalID string
	)
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Print recent timeline events, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, open, opts, func(s *store.Store) error {
				var events []domain.TimelineEvent
				if goalID != "" {
					events = s.TimelineEventsForGoal(goalID)
					if limit > 0 && len(events) > limit {
						events = events[:limit]
					}
				} else {
					events = s.TimelineEvents(limit)
				}
				w := cmd.OutOrStdout()
				for _, e := range events {
					fmt.Fprintf(w, "%s  %-20s %s\n", e.Timestamp.Format("2006-01-02 15:04"), e.EventType, e.Details)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", timeline.DefaultLimit, "maximum number of events")
	cmd.Flags().StringVar(&goalID, "goal", "", "only events of this goal")
	return cmd
}

func exportCmd(open openFunc, opts *openOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the full snapshot as JSON or YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unsupported format %q (use json or yaml)", format)
			}
			return withStore(cmd, open, opts, func(s *store.Store) error {
				data, err := json.MarshalIndent(s.Snapshot(), "", "  ")
				if err != nil {
					return err
				}
				if format == "yaml" {
					if data, err = jsonToYAML(data); err != nil {
						return err
					}
				}
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format (json, yaml)")
	return cmd
}

// jsonToYAML re-encodes a JSON document as block-style YAML. Going through
// a yaml.Node keeps the key order of the JSON encoding.
func jsonToYAML(data []byte) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	resetStyle(&doc)
	out, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, err
	}
	return []byte(strings.TrimRight(string(out), "\n")), nil
}

func resetStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		resetStyle(c)
	}
}

func valueOrDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
