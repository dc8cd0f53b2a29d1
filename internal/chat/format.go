// internal/chat/format.go
package chat

import (
	"fmt"
	"strings"

	"librabot/internal/library"
)

var divider = strings.Repeat("-", 30) + "\n"

func availability(b library.Book) string {
	if b.Available() {
		return "Available"
	}
	return "On loan"
}

func orNotSet(s string) string {
	if s == "" {
		return "not set"
	}
	return s
}

func formatBooks(books []library.Book) string {
	var sb strings.Builder
	sb.WriteString("Library books:\n\n")
	for _, b := range books {
		fmt.Fprintf(&sb, "%s\n", b.Title)
		fmt.Fprintf(&sb, "Author: %s\n", b.Author)
		fmt.Fprintf(&sb, "Copies: %d/%d - %s\n", b.AvailableCopies, b.TotalCopies, availability(b))
		fmt.Fprintf(&sb, "Book ID: %d\n", b.ID)
		sb.WriteString(divider)
	}
	return sb.String()
}

func formatSearchResults(keyword string, books []library.Book) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Search results for %q:\n\n", keyword)
	for _, b := range books {
		fmt.Fprintf(&sb, "%s\n", b.Title)
		fmt.Fprintf(&sb, "Author: %s\n", b.Author)
		fmt.Fprintf(&sb, "Status: %s\n", availability(b))
		fmt.Fprintf(&sb, "Book ID: %d\n", b.ID)
		sb.WriteString(divider)
	}
	return sb.String()
}

func formatMembers(members []library.Member) string {
	var sb strings.Builder
	sb.WriteString("Library members:\n\n")
	for _, m := range members {
		fmt.Fprintf(&sb, "%s\n", m.FullName)
		fmt.Fprintf(&sb, "Phone: %s\n", orNotSet(m.Phone))
		fmt.Fprintf(&sb, "Email: %s\n", orNotSet(m.Email))
		fmt.Fprintf(&sb, "Joined: %s\n", m.JoinDate.Format("2006-01-02"))
		fmt.Fprintf(&sb, "Member ID: %d\n", m.ID)
		sb.WriteString(divider)
	}
	return sb.String()
}

func formatLoans(loans []library.LoanView) string {
	var sb strings.Builder
	sb.WriteString("Books currently on loan:\n\n")
	for _, l := range loans {
		status := "On loan"
		if l.Status == library.StatusOverdue {
			status = "Overdue"
		}
		fmt.Fprintf(&sb, "%s\n", l.Title)
		fmt.Fprintf(&sb, "Author: %s\n", l.Author)
		fmt.Fprintf(&sb, "Borrowed by: %s\n", l.MemberName)
		fmt.Fprintf(&sb, "Borrowed on: %s\n", l.BorrowDate.Format("2006-01-02"))
		fmt.Fprintf(&sb, "Due back: %s\n", l.DueDate.Format("2006-01-02"))
		fmt.Fprintf(&sb, "Status: %s\n", status)
		sb.WriteString(divider)
	}
	return sb.String()
}
