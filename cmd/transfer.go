package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/shared"
	"github.com/Prashant-koi/Spotify-to-ytmusic/internal/transfer"
)

// TransferRun runs a single Spotify → YouTube Music playlist transfer.
func (r *Runner) TransferRun(ctx context.Context, cmd *cli.Command) error {
	identifier := cmd.StringArg("playlist")
	destName := cmd.String("name")

	orchestrator, err := r.ensureOrchestrator()
	if err != nil {
		return err
	}

	if !cmd.Bool("json") {
		r.writePlain("%s\n", transfer.Started{}.Message())
	}

	outcome, err := orchestrator.Run(ctx, identifier, destName)
	if err != nil {
		return err
	}

	r.notifier.Publish(outcome)

	if cmd.Bool("json") {
		return r.writeJSON(transferReport(outcome), cmd.Bool("pretty"))
	}

	switch o := outcome.(type) {
	case transfer.Success:
		r.writePlainHeader("Transfer Complete!")
		r.writePlain("%s\n", o.Message())
		return nil
	case transfer.Warning:
		r.writePlainHeader("Transfer Completed With Warnings")
		r.writePlain("%s\n", o.Message())
		return nil
	case transfer.MissingInput:
		return fmt.Errorf("%w: %s", shared.ErrMissingArgument, o.Message())
	case transfer.NotAuthenticated:
		r.writePlain("%s\n", o.Message())
		return fmt.Errorf("%w: %s", shared.ErrNotAuthenticated, o.Provider.DisplayName())
	case transfer.CorruptCredentials:
		r.writePlain("%s\n", o.Message())
		return shared.ErrInvalidCredentials
	case transfer.AuthFailure:
		r.writePlain("%s\n", o.Message())
		return fmt.Errorf("%w: credentials rejected, re-authenticate both services", shared.ErrAuthRejected)
	case transfer.Failure:
		r.writePlain("%s\n", o.Message())
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, o.Text)
	default:
		r.writePlain("%s\n", outcome.Message())
		return nil
	}
}

// TransferHistory lists recent transfer attempts, most recent first.
func (r *Runner) TransferHistory(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.ensureStore(); err != nil {
		return err
	}

	history, err := r.ensureHistory()
	if err != nil {
		return err
	}
	if history == nil {
		return fmt.Errorf("%w: transfer history requires the credential database", shared.ErrServiceUnavailable)
	}

	entries, err := history.List(cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}

	if len(entries) == 0 {
		return r.writePlain("No transfers recorded yet.\n")
	}

	r.writePlainHeader("Transfer History")
	for _, entry := range entries {
		r.writePlain("%s  [%s]  %s\n", entry.CreatedAt.Format("2006-01-02 15:04"), entry.Status, entry.Playlist)
		r.writePlain("    %s\n", entry.Message)
	}

	return nil
}

// transferReport shapes an outcome for --json output.
func transferReport(outcome transfer.Outcome) map[string]any {
	report := map[string]any{
		"message": outcome.Message(),
	}

	switch o := outcome.(type) {
	case transfer.Success:
		report["status"] = "success"
		report["playlist_id"] = o.PlaylistID
		if o.HasCounts {
			report["songs_added"] = o.SongsAdded
			report["track_total"] = o.TrackTotal
		}
	case transfer.Warning:
		report["status"] = "warning"
		report["detail"] = o.Detail
	case transfer.AuthFailure:
		report["status"] = "auth_failure"
		report["http_status"] = o.Status
	case transfer.Failure:
		report["status"] = "failure"
		if o.Status != 0 {
			report["http_status"] = o.Status
		}
	default:
		report["status"] = "rejected"
	}

	return report
}
