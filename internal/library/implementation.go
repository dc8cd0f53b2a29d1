// internal/library/implementation.go
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// service implements the Service interface over a relational store.
type service struct {
	db     *sql.DB
	log    *zap.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// NewService creates a library service over an opened database.
func NewService(db *sql.DB, log *zap.Logger) Service {
	return &service{
		db:     db,
		log:    log,
		tracer: otel.Tracer("librabot/library"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// AddBook registers a new book; every copy starts on the shelf.
func (s *service) AddBook(ctx context.Context, title, author, isbn string, copies, year int) (*Book, error) {
	ctx, span := s.tracer.Start(ctx, "library.add_book")
	defer span.End()

	if copies < 1 {
		copies = 1
	}
	book := &Book{
		Title:           title,
		Author:          author,
		ISBN:            isbn,
		PublicationYear: year,
		TotalCopies:     copies,
		AvailableCopies: copies,
		CreatedAt:       s.now(),
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO books (title, author, isbn, publication_year, total_copies, available_copies, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, title, author, nullString(isbn), nullInt(year), copies, copies, book.CreatedAt).Scan(&book.ID)
	if err != nil {
		return nil, fmt.Errorf("insert book: %w", err)
	}

	s.log.Info("book added",
		zap.Int64("book_id", book.ID),
		zap.String("title", title),
		zap.Int("copies", copies))
	return book, nil
}

// AddMember registers a new active member.
func (s *service) AddMember(ctx context.Context, fullName, phone, email, address string) (*Member, error) {
	ctx, span := s.tracer.Start(ctx, "library.add_member")
	defer span.End()

	member := &Member{
		FullName: fullName,
		Phone:    phone,
		Email:    email,
		Address:  address,
		JoinDate: s.now(),
		IsActive: true,
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO members (full_name, phone, email, address, join_date, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING id
	`, fullName, nullString(phone), nullString(email), nullString(address), member.JoinDate).Scan(&member.ID)
	if err != nil {
		return nil, fmt.Errorf("insert member: %w", err)
	}

	s.log.Info("member added",
		zap.Int64("member_id", member.ID),
		zap.String("full_name", fullName))
	return member, nil
}

// ListBooks returns all books ordered by title.
func (s *service) ListBooks(ctx context.Context) ([]Book, error) {
	return s.queryBooks(ctx, `
		SELECT id, title, author, isbn, publication_year, total_copies, available_copies
		FROM books
		ORDER BY title
	`)
}

// SearchByTitle finds books whose title contains the keyword,
// case-insensitively.
func (s *service) SearchByTitle(ctx context.Context, keyword string) ([]Book, error) {
	return s.queryBooks(ctx, `
		SELECT id, title, author, isbn, publication_year, total_copies, available_copies
		FROM books
		WHERE lower(title) LIKE lower($1)
		ORDER BY title
	`, "%"+keyword+"%")
}

// SearchByAuthor finds books whose author contains the keyword,
// case-insensitively.
func (s *service) SearchByAuthor(ctx context.Context, keyword string) ([]Book, error) {
	return s.queryBooks(ctx, `
		SELECT id, title, author, isbn, publication_year, total_copies, available_copies
		FROM books
		WHERE lower(author) LIKE lower($1)
		ORDER BY title
	`, "%"+keyword+"%")
}

func (s *service) queryBooks(ctx context.Context, query string, args ...any) ([]Book, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var books []Book
	for rows.Next() {
		var (
			b    Book
			isbn sql.NullString
			year sql.NullInt64
		)
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &isbn, &year, &b.TotalCopies, &b.AvailableCopies); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		b.ISBN = isbn.String
		b.PublicationYear = int(year.Int64)
		books = append(books, b)
	}
	return books, rows.Err()
}

// ListMembers returns all active members ordered by name.
func (s *service) ListMembers(ctx context.Context) ([]Member, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, full_name, phone, email, address, join_date
		FROM members
		WHERE is_active = TRUE
		ORDER BY full_name
	`)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var (
			m                     Member
			phone, email, address sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.FullName, &phone, &email, &address, &m.JoinDate); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		m.Phone = phone.String
		m.Email = email.String
		m.Address = address.String
		m.IsActive = true
		members = append(members, m)
	}
	return members, rows.Err()
}

// Borrow lends one copy of a book to a member inside a single
// transaction: the loan insert and the availability decrement commit
// together or not at all. The decrement is conditional on a copy
// still being free, so two borrowers racing for the last copy cannot
// both succeed.
func (s *service) Borrow(ctx context.Context, bookID, memberID int64, days int) (*BorrowReceipt, error) {
	ctx, span := s.tracer.Start(ctx, "library.borrow",
		trace.WithAttributes(
			attribute.Int64("book.id", bookID),
			attribute.Int64("member.id", memberID),
			attribute.Int("loan.days", days),
		),
	)
	defer span.End()

	if days < 1 {
		days = DefaultLoanDays
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		borrowsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		title     string
		available int
	)
	err = tx.QueryRowContext(ctx, `SELECT title, available_copies FROM books WHERE id = $1`, bookID).
		Scan(&title, &available)
	if errors.Is(err, sql.ErrNoRows) {
		borrowsTotal.WithLabelValues("book_not_found").Inc()
		return nil, ErrBookNotFound
	}
	if err != nil {
		borrowsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("query book: %w", err)
	}
	if available < 1 {
		borrowsTotal.WithLabelValues("unavailable").Inc()
		return nil, &UnavailableError{Title: title}
	}

	var memberName string
	err = tx.QueryRowContext(ctx, `SELECT full_name FROM members WHERE id = $1 AND is_active = TRUE`, memberID).
		Scan(&memberName)
	if errors.Is(err, sql.ErrNoRows) {
		borrowsTotal.WithLabelValues("member_not_found").Inc()
		return nil, ErrMemberNotFound
	}
	if err != nil {
		borrowsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("query member: %w", err)
	}

	now := s.now()
	dueDate := now.AddDate(0, 0, days)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO borrowings (book_id, member_id, borrow_date, due_date, is_returned)
		VALUES ($1, $2, $3, $4, FALSE)
	`, bookID, memberID, now, dueDate); err != nil {
		borrowsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("insert loan: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE books
		SET available_copies = available_copies - 1
		WHERE id = $1 AND available_copies > 0
	`, bookID)
	if err != nil {
		borrowsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decrement availability: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		// Lost the race for the last copy; the rollback discards the loan.
		borrowsTotal.WithLabelValues("unavailable").Inc()
		return nil, &UnavailableError{Title: title}
	}

	if err := tx.Commit(); err != nil {
		borrowsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("commit borrow: %w", err)
	}

	borrowsTotal.WithLabelValues("success").Inc()
	s.log.Info("book borrowed",
		zap.Int64("book_id", bookID),
		zap.Int64("member_id", memberID),
		zap.Time("due_date", dueDate))
	return &BorrowReceipt{BookTitle: title, MemberName: memberName, DueDate: dueDate}, nil
}

// Return closes the most recently borrowed active loan for the book
// and increments availability, in one transaction. When several
// copies of the same title are out, the latest borrow is the one
// closed.
func (s *service) Return(ctx context.Context, bookID int64) (*ReturnReceipt, error) {
	ctx, span := s.tracer.Start(ctx, "library.return",
		trace.WithAttributes(attribute.Int64("book.id", bookID)),
	)
	defer span.End()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		returnsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		loanID     int64
		title      string
		memberName string
	)
	err = tx.QueryRowContext(ctx, `
		SELECT br.id, bk.title, m.full_name
		FROM borrowings br
		JOIN books bk ON br.book_id = bk.id
		JOIN members m ON br.member_id = m.id
		WHERE br.book_id = $1 AND br.is_returned = FALSE
		ORDER BY br.borrow_date DESC
		LIMIT 1
	`, bookID).Scan(&loanID, &title, &memberName)
	if errors.Is(err, sql.ErrNoRows) {
		returnsTotal.WithLabelValues("no_active_loan").Inc()
		return nil, ErrNoActiveLoan
	}
	if err != nil {
		returnsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("query loan: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE borrowings
		SET is_returned = TRUE, return_date = $1
		WHERE id = $2 AND is_returned = FALSE
	`, s.now(), loanID)
	if err != nil {
		returnsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("close loan: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		returnsTotal.WithLabelValues("no_active_loan").Inc()
		return nil, ErrNoActiveLoan
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE books
		SET available_copies = available_copies + 1
		WHERE id = $1 AND available_copies < total_copies
	`, bookID)
	if err != nil {
		returnsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("increment availability: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		returnsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("availability out of sync for book %d", bookID)
	}

	if err := tx.Commit(); err != nil {
		returnsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("commit return: %w", err)
	}

	returnsTotal.WithLabelValues("success").Inc()
	s.log.Info("book returned",
		zap.Int64("book_id", bookID),
		zap.Int64("loan_id", loanID))
	return &ReturnReceipt{BookTitle: title, MemberName: memberName}, nil
}

// ListOutstanding returns all active loans ordered by due date. A loan
// is Overdue once its due date has passed the start of the current
// day.
func (s *service) ListOutstanding(ctx context.Context) ([]LoanView, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT bk.title, bk.author, m.full_name, br.borrow_date, br.due_date
		FROM borrowings br
		JOIN books bk ON br.book_id = bk.id
		JOIN members m ON br.member_id = m.id
		WHERE br.is_returned = FALSE
		ORDER BY br.due_date
	`)
	if err != nil {
		return nil, fmt.Errorf("query loans: %w", err)
	}
	defer rows.Close()

	today := startOfDay(s.now())
	var loans []LoanView
	for rows.Next() {
		var v LoanView
		if err := rows.Scan(&v.Title, &v.Author, &v.MemberName, &v.BorrowDate, &v.DueDate); err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		v.Status = StatusOnLoan
		if v.DueDate.Before(today) {
			v.Status = StatusOverdue
		}
		loans = append(loans, v)
	}
	return loans, rows.Err()
}

// DefaultLoanDays is the lending period used when none is given.
const DefaultLoanDays = 14

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}
