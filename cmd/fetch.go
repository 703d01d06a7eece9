package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fcrescio/minerva/pkg/fbconfig"
	"github.com/fcrescio/minerva/pkg/persistence"
	"github.com/fcrescio/minerva/pkg/todos"
)

// NewFetchTodosCmd creates the fetch-todos command.
func NewFetchTodosCmd() *cobra.Command {
	var (
		configPath      string
		collection      string
		summaryGroup    string
		credentialsPath string
		outputPath      string
		runCacheFile    string
		skipIfRun       bool
	)

	cmd := &cobra.Command{
		Use:   "fetch-todos",
		Short: "Fetch todo lists from Firestore and dump them to a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := fbconfig.FromGoogleServices(configPath)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			client, err := newFirestoreClient(ctx, config.ProjectID, credentialsPath)
			if err != nil {
				return err
			}
			defer client.Close()

			lists, err := todos.FetchTodoLists(ctx, client, collection, summaryGroup)
			if err != nil {
				return err
			}
			logrus.WithField("lists", len(lists)).Debug("Fetched todo lists for dumping")

			if len(lists) == 0 {
				logrus.Info("No todo lists matched the requested filters")
				fmt.Fprintln(cmd.OutOrStdout(), "No todo lists found; nothing to dump.")
				return nil
			}

			markers := persistence.ComputeRunMarkers(lists)

			if skipIfRun && runCacheFile != "" {
				if _, statErr := os.Stat(runCacheFile); statErr == nil {
					existing, readErr := persistence.ReadRunMarkers(runCacheFile)
					if readErr != nil {
						logrus.WithError(readErr).Warn("Unable to read existing run markers")
						existing = map[string]string{}
					}
					var pending []todos.TodoList
					for _, list := range lists {
						if markers[list.ID] != existing[list.ID] {
							pending = append(pending, list)
						}
					}
					lists = pending
					filtered := make(map[string]string, len(lists))
					for _, list := range lists {
						filtered[list.ID] = markers[list.ID]
					}
					markers = filtered
					if len(lists) == 0 {
						logrus.Info("All todo lists match cached markers; skipping dump")
						fmt.Fprintln(cmd.OutOrStdout(), "Summary already generated for today's todos; skipping dump.")
						return nil
					}
				}
			}

			records := make([]persistence.TodoListRecord, 0, len(lists))
			for _, list := range lists {
				records = append(records, persistence.SerializeTodoList(list))
			}
			dump := persistence.Dump{
				Metadata: persistence.DumpMetadata{
					GeneratedAt:  time.Now().UTC().Format(time.RFC3339),
					Collection:   collection,
					SummaryGroup: summaryGroup,
					RunCacheFile: runCacheFile,
				},
				RunMarkers: markers,
				TodoLists:  records,
			}

			if err := persistence.WriteDump(dump, outputPath); err != nil {
				return err
			}
			logrus.WithField("path", outputPath).Info("Wrote todo dump")
			fmt.Fprintf(cmd.OutOrStdout(), "Todo lists saved to %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "google-services.json", "Path to the google-services.json file identifying the Firebase project")
	cmd.Flags().StringVar(&collection, "collection", "sessions", "Name of the Firestore collection that stores the sessions")
	cmd.Flags().StringVar(&summaryGroup, "summary-group", "", "Only include sessions whose summaryGroup field matches this value")
	cmd.Flags().StringVar(&credentialsPath, "credentials", "", "Path to a Google Cloud service account JSON file (defaults to GOOGLE_APPLICATION_CREDENTIALS)")
	cmd.Flags().StringVar(&outputPath, "output", "todo_dump.json", "Path to the JSON file where the todo lists will be stored")
	cmd.Flags().StringVar(&runCacheFile, "run-cache-file", "summary_run_marker.txt", "Path to the file that stores the hash of the current date and todo set")
	cmd.Flags().BoolVar(&skipIfRun, "skip-if-run", false, "Skip output when the run cache file already contains the hash for today's todos")

	return cmd
}
