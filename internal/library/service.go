// internal/library/service.go
package library

import "context"

// Service defines the interface for the library catalog and loan
// lifecycle.
type Service interface {
	AddBook(ctx context.Context, title, author, isbn string, copies, year int) (*Book, error)
	AddMember(ctx context.Context, fullName, phone, email, address string) (*Member, error)

	ListBooks(ctx context.Context) ([]Book, error)
	ListMembers(ctx context.Context) ([]Member, error)
	SearchByTitle(ctx context.Context, keyword string) ([]Book, error)
	SearchByAuthor(ctx context.Context, keyword string) ([]Book, error)

	// Borrow lends one copy of a book to a member for the given number
	// of days. The availability check and decrement are atomic with the
	// loan insert: concurrent borrows of the last copy serialize so
	// that exactly one succeeds.
	Borrow(ctx context.Context, bookID, memberID int64, days int) (*BorrowReceipt, error)

	// Return closes the most recently borrowed active loan for the
	// book and puts the copy back on the shelf.
	Return(ctx context.Context, bookID int64) (*ReturnReceipt, error)

	// ListOutstanding returns all active loans ordered by due date,
	// each classified OnLoan or Overdue.
	ListOutstanding(ctx context.Context) ([]LoanView, error)
}
