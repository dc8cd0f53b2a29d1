// internal/library/domain.go
package library

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrBookNotFound    = errors.New("book not found")
	ErrBookUnavailable = errors.New("book has no available copies")
	ErrMemberNotFound  = errors.New("member not found or inactive")
	ErrNoActiveLoan    = errors.New("no active loan for book")
)

// UnavailableError reports a borrow attempt against a book that
// exists but has no free copies. It carries the title for the reply.
type UnavailableError struct {
	Title string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("book %q has no available copies", e.Title)
}

func (e *UnavailableError) Unwrap() error { return ErrBookUnavailable }

// Book is a catalog entry with copy-count bookkeeping. AvailableCopies
// always equals TotalCopies minus the number of active loans.
type Book struct {
	ID              int64
	Title           string
	Author          string
	ISBN            string
	PublicationYear int
	TotalCopies     int
	AvailableCopies int
	CreatedAt       time.Time
}

// Available reports whether at least one copy is on the shelf.
func (b Book) Available() bool { return b.AvailableCopies > 0 }

// Member is a registered borrower. Members are deactivated, never
// deleted.
type Member struct {
	ID       int64
	FullName string
	Phone    string
	Email    string
	Address  string
	JoinDate time.Time
	IsActive bool
}

// Loan records a book lent to a member. A loan is active until it is
// returned; returning is its only transition and is terminal.
type Loan struct {
	ID         int64
	BookID     int64
	MemberID   int64
	BorrowDate time.Time
	DueDate    time.Time
	ReturnDate time.Time
	IsReturned bool
}

// LoanStatus classifies an active loan against the current date.
type LoanStatus string

const (
	StatusOnLoan  LoanStatus = "OnLoan"
	StatusOverdue LoanStatus = "Overdue"
)

// LoanView is one row of the outstanding-loans listing.
type LoanView struct {
	Title      string
	Author     string
	MemberName string
	BorrowDate time.Time
	DueDate    time.Time
	Status     LoanStatus
}

// BorrowReceipt is the successful outcome of a borrow.
type BorrowReceipt struct {
	BookTitle  string
	MemberName string
	DueDate    time.Time
}

// ReturnReceipt is the successful outcome of a return.
type ReturnReceipt struct {
	BookTitle  string
	MemberName string
}
