// Package main triagectl：通过 HTTP API 管理分诊患者列表
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"owlback/wisefido-triage/internal/client"

	"github.com/spf13/cobra"
)

var (
	serverURL  string
	timeout    time.Duration
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "triagectl",
	Short: "Manage the triage patient list through wisefido-triage",
	Long: `triagectl talks to a running wisefido-triage server.

Examples:
  triagectl list
  triagectl add 7 "Ann Lee" 42 3
  triagectl update 7 1
  triagectl delete 7
  triagectl audit --limit 20`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("TRIAGE_SERVER", "http://localhost:5000"), "wisefido-triage base URL")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	rootCmd.AddCommand(listCmd, addCmd, updateCmd, deleteCmd, auditCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newClient() *client.Client {
	return client.New(serverURL, timeout)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List patients",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := newClient().ListPatients(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(records)
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tAGE\tSEVERITY")
		for _, r := range records {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ID, r.Name, r.Age, r.Severity)
		}
		return tw.Flush()
	},
}

var addCmd = &cobra.Command{
	Use:   "add <id> <name> <age> <severity>",
	Short: "Add a patient",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := client.Patient{ID: args[0], Name: args[1], Age: args[2], Severity: args[3]}
		if err := newClient().AddPatient(cmd.Context(), p); err != nil {
			return err
		}
		fmt.Printf("added patient %s\n", p.ID)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <id> <severity>",
	Short: "Change a patient's severity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().UpdatePatient(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("updated patient %s\n", args[0])
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a patient",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().DeletePatient(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("deleted patient %s\n", args[0])
		return nil
	},
}

var auditLimit int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent triage program invocations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := newClient().RecentInvocations(cmd.Context(), auditLimit)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(entries)
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tOPERATION\tPATIENT\tOUTCOME\tKIND\tEXIT\tMS")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
				e.CreatedAt.Local().Format(time.DateTime), e.Operation, e.PatientID, e.Outcome, e.ErrorKind, e.ExitCode, e.DurationMs)
		}
		return tw.Flush()
	},
}

func init() {
	auditCmd.Flags().IntVar(&auditLimit, "limit", 20, "Number of entries")
}
