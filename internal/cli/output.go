package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/hongminglow/levelup-be/internal/models"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printPayments(w io.Writer, payments []models.Payment) error {
	if jsonOutput {
		return printJSON(w, payments)
	}
	if len(payments) == 0 {
		fmt.Fprintln(w, "No payments found.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tREFERENCE\tAMOUNT\tSTATUS\tCREATED")
	for _, p := range payments {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			p.ID, p.UserEmail, p.ReferenceNumber, p.Amount, p.Status, p.CreatedAt.UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}

func printUsers(w io.Writer, users []models.User) error {
	if jsonOutput {
		return printJSON(w, users)
	}
	if len(users) == 0 {
		fmt.Fprintln(w, "No users found.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "UID\tNAME\tEMAIL\tROLE")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.DisplayName, u.Email, u.Role)
	}
	return tw.Flush()
}

func printHistory(w io.Writer, changes []models.StatusChange) error {
	if jsonOutput {
		return printJSON(w, changes)
	}
	if len(changes) == 0 {
		fmt.Fprintln(w, "No status changes recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tFROM\tTO\tBY")
	for _, c := range changes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.CreatedAt.UTC().Format(time.RFC3339), c.From, c.To, c.ActorID)
	}
	return tw.Flush()
}
