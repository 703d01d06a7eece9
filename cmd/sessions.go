package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fcrescio/minerva/pkg/fbconfig"
	"github.com/fcrescio/minerva/pkg/todos"
)

// NewListSessionsCmd creates the list-sessions command, an inspection aid
// that prints every session document and its notes.
func NewListSessionsCmd() *cobra.Command {
	var (
		configPath      string
		collection      string
		credentialsPath string
	)

	cmd := &cobra.Command{
		Use:   "list-sessions",
		Short: "List the session documents and notes stored in Firestore",
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

			sessions, err := todos.FetchSessions(ctx, client, collection)
			if err != nil {
				return err
			}

			printSessions(cmd.OutOrStdout(), collection, sessions)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "google-services.json", "Path to the google-services.json file identifying the Firebase project")
	cmd.Flags().StringVar(&collection, "collection", "sessions", "Name of the Firestore collection that stores the sessions")
	cmd.Flags().StringVar(&credentialsPath, "credentials", "", "Path to a Google Cloud service account JSON file (defaults to GOOGLE_APPLICATION_CREDENTIALS)")

	return cmd
}

func printSessions(w io.Writer, collection string, sessions []todos.Session) {
	if len(sessions) == 0 {
		fmt.Fprintf(w, "%s\n", color.YellowString("No documents found in collection %q.", collection))
		return
	}

	fmt.Fprintf(w, "%s\n", color.GreenString("Found %d session(s) in collection %q.", len(sessions), collection))
	for _, session := range sessions {
		fmt.Fprintf(w, "\nSession: %s\n", session.Title())
		for _, line := range session.FieldLines() {
			fmt.Fprintf(w, "  %s\n", line)
		}

		if len(session.Notes) == 0 {
			continue
		}
		fmt.Fprintf(w, "Notes for session %s\n", session.ID)
		for _, note := range session.Notes {
			fmt.Fprintf(w, "  %s\t%s\t%s\n", note.ID, note.Content(), note.Metadata())
		}
	}
}
