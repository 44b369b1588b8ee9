package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrEthical07/multiAuth/session"
)

var revokeAll bool

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect and revoke device sessions",
	Long:  `Commands for listing and revoking the Redis-backed device sessions of a user.`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list <userId>",
	Short: "List the live sessions of a user, most recent first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rdb, err := openRedis(cmd.Context(), appConfig)
		if err != nil {
			return err
		}
		defer rdb.Close()
		return listSessions(cmd.Context(), sessionStore(appConfig, rdb), args[0], cmd.OutOrStdout())
	},
}

var sessionsRevokeCmd = &cobra.Command{
	Use:   "revoke <userId> [deviceId]",
	Short: "Revoke one device session, or every session with --all",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		deviceID := ""
		if len(args) == 2 {
			deviceID = args[1]
		}
		rdb, err := openRedis(cmd.Context(), appConfig)
		if err != nil {
			return err
		}
		defer rdb.Close()
		return revokeSessions(cmd.Context(), sessionStore(appConfig, rdb), args[0], deviceID, revokeAll, cmd.OutOrStdout())
	},
}

type sessionLister interface {
	ListAll(ctx context.Context, subjectID string) ([]*session.Session, error)
}

type sessionRevoker interface {
	Remove(ctx context.Context, subjectID, deviceID string) error
	RemoveAll(ctx context.Context, subjectID string) error
}

func listSessions(ctx context.Context, store sessionLister, subjectID string, out io.Writer) error {
	sessions, err := store.ListAll(ctx, subjectID)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintf(out, "no sessions for %s\n", subjectID)
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DEVICE\tIP\tLAST ACTIVITY\tUSER AGENT")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.DeviceID, s.IP, s.LastActivity.Format(time.RFC3339), s.UserAgent)
	}
	return tw.Flush()
}

func revokeSessions(ctx context.Context, store sessionRevoker, subjectID, deviceID string, all bool, out io.Writer) error {
	switch {
	case all && deviceID != "":
		return errors.New("pass either a device id or --all, not both")
	case all:
		if err := store.RemoveAll(ctx, subjectID); err != nil {
			return err
		}
		fmt.Fprintf(out, "revoked every session of %s\n", subjectID)
	case deviceID != "":
		if err := store.Remove(ctx, subjectID, deviceID); err != nil {
			return err
		}
		fmt.Fprintf(out, "revoked session %s of %s\n", deviceID, subjectID)
	default:
		return errors.New("a device id or --all is required")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsRevokeCmd)
	sessionsRevokeCmd.Flags().BoolVar(&revokeAll, "all", false, "Revoke every session of the user")
}
