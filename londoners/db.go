package londoners

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
	_ "github.com/lib/pq" // Postgres driver initialization.
)

// DB describes Londoners database interface.
type DB interface {
	Begin() (DBTrans, error)
}

// DBTrans describes interface to execute database queries.
type DBTrans interface {
	Commit() error
	Rollback()

	// FindCurrentToken returns the most recently issued token for the scope,
	// or nil if the store has none.
	FindCurrentToken(Scope) (*CachedToken, error)
	InsertToken(*CachedToken) error
	DeleteScopeTokens(Scope) error

	// CreateUser stores a new user record and returns nil user if the guest
	// ID or email is already taken.
	CreateUser(*User) (*User, error)
	// FindUserFavorites returns the favorites list of the user, and a flag
	// whether the user exists.
	FindUserFavorites(guestID string) ([]string, bool, error)
	UpdateUserFavorites(guestID string, favorites []string) error

	// FindReviewID returns the ID of the review left by the guest for the
	// listing, or nil if there is none.
	FindReviewID(listingID, guestID string) (*int64, error)
	// CreateReview stores a review with its rating child record and returns
	// the assigned review ID.
	CreateReview(*Review) (int64, error)
	GetListingReviews(listingID string) ([]*Review, error)

	CreateReservation(*ReservationRecord) error
	// GetCheckedOutReservations returns reservations whose check-out falls
	// inside the given window, for the review-request mail sweep.
	GetCheckedOutReservations(from, till time.Time) ([]*ReservationRecord, error)

	CreateQuote(*QuoteRecord) error

	// FindListingCoords returns stored coordinates of the listing, or nil
	// if unknown.
	FindListingCoords(listingID string) (*ListingCoords, error)
	GetListingCoords(excludeListingID string) ([]*ListingCoords, error)

	GetListingVideos(listingID string) ([]*ListingVideo, error)
}

// NewDB creates new database connection.
func NewDB(settings *Settings) (DB, error) {
	handle, err := sql.Open("postgres", settings.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf(`failed to open DB object: "%v"`, err)
	}
	if err = handle.Ping(); err != nil {
		return nil, fmt.Errorf(`failed to ping DB: "%v"`, err)
	}
	return &db{handle: handle}, nil
}

// NewDBWithHandle wraps an existing database handle.
func NewDBWithHandle(handle *sql.DB) DB { return &db{handle: handle} }

////////////////////////////////////////////////////////////////////////////////

type db struct{ handle *sql.DB }

func (db *db) Begin() (DBTrans, error) {
	tx, err := db.handle.Begin()
	if err != nil {
		return nil, err
	}
	return &dbTrans{tx: tx}, nil
}

////////////////////////////////////////////////////////////////////////////////

type dbTrans struct{ tx *sql.Tx }

func (t *dbTrans) Commit() error {
	if t.tx == nil {
		return nil
	}
	if err := t.tx.Commit(); err != nil {
		return err
	}
	t.tx = nil
	return nil
}

func (t *dbTrans) Rollback() {
	if t.tx == nil {
		return
	}
	if err := t.tx.Rollback(); err != nil {
		// There is no way to restore application state at error at rollback,
		// the behavior is undefined, so the application must be stopped.
		log.Panicf(`Failed to rollback database transaction: "%s".`, err)
	}
	t.tx = nil
}

func (t *dbTrans) checkInsertResult(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected != 1 {
		return fmt.Errorf(`failed to insert record: affected %d record`,
			rowsAffected)
	}
	return nil
}

func (t *dbTrans) isDuplicateErr(err error) bool {
	pgErr, ok := err.(*pq.Error)
	return ok && pgErr.Code == "23505"
}

////////////////////////////////////////////////////////////////////////////////

func (t *dbTrans) FindCurrentToken(scope Scope) (*CachedToken, error) {
	query := `SELECT access_token, token_type, issued_at, expires_at
		FROM guesty_token
		WHERE scope = $1
		ORDER BY issued_at DESC
		LIMIT 1`
	result := &CachedToken{Scope: scope}
	switch err := t.tx.QueryRow(query, string(scope)).Scan(
		&result.Value, &result.TokenType,
		&result.IssuedAt, &result.ExpiresAt); {
	case err == sql.ErrNoRows:
		return nil, nil
	case err != nil:
		return nil, err
	}
	return result, nil
}

func (t *dbTrans) InsertToken(token *CachedToken) error {
	query := `INSERT INTO
			guesty_token(scope, access_token, token_type, issued_at, expires_at)
		VALUES($1, $2, $3, $4, $5)`
	result, err := t.tx.Exec(query,
		string(token.Scope), token.Value, token.TokenType,
		token.IssuedAt, token.ExpiresAt)
	if err != nil {
		return err
	}
	return t.checkInsertResult(result)
}

func (t *dbTrans) DeleteScopeTokens(scope Scope) error {
	query := `DELETE FROM guesty_token WHERE scope = $1`
	_, err := t.tx.Exec(query, string(scope))
	return err
}

////////////////////////////////////////////////////////////////////////////////

func (t *dbTrans) CreateUser(user *User) (*User, error) {
	query := `INSERT INTO app_user(id, guest_id, email, first_name, last_name,
			phone, user_type, favorites, time)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := t.tx.Exec(query,
		user.ID, user.GuestID, user.Email, user.FirstName, user.LastName,
		user.Phone, user.UserType, pq.Array(user.Favorites), user.CreatedAt)
	if err != nil {
		if t.isDuplicateErr(err) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (t *dbTrans) FindUserFavorites(
	guestID string) ([]string, bool, error) {
	query := `SELECT favorites FROM app_user WHERE guest_id = $1`
	var favorites []string
	switch err := t.tx.QueryRow(query, guestID).
		Scan(pq.Array(&favorites)); {
	case err == sql.ErrNoRows:
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	if favorites == nil {
		favorites = []string{}
	}
	return favorites, true, nil
}

func (t *dbTrans) UpdateUserFavorites(
	guestID string, favorites []string) error {
	query := `UPDATE app_user SET favorites = $2 WHERE guest_id = $1`
	result, err := t.tx.Exec(query, guestID, pq.Array(favorites))
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected != 1 {
		return fmt.Errorf(`failed to update favorites: affected %d record`,
			rowsAffected)
	}
	return nil
}

////////////////////////////////////////////////////////////////////////////////

func (t *dbTrans) FindReviewID(
	listingID, guestID string) (*int64, error) {
	query := `SELECT id FROM review WHERE listing_id = $1 AND guest_id = $2`
	var id int64
	switch err := t.tx.QueryRow(query, listingID, guestID).Scan(&id); {
	case err == sql.ErrNoRows:
		return nil, nil
	case err != nil:
		return nil, err
	}
	return &id, nil
}

func (t *dbTrans) CreateReview(review *Review) (int64, error) {
	query := `INSERT INTO
			review(listing_id, guest_id, review_text, overall_rating, time)
		VALUES($1, $2, $3, $4, $5)
		RETURNING id`
	var id int64
	err := t.tx.QueryRow(query,
		review.ListingID, review.GuestID, review.Text, review.Overall,
		review.CreatedAt).
		Scan(&id)
	if err != nil {
		return 0, err
	}

	query = `INSERT INTO review_rating(review, cleanliness, accuracy,
			check_in, communication, location, value)
		VALUES($1, $2, $3, $4, $5, $6, $7)`
	result, err := t.tx.Exec(query, id,
		review.Ratings.Cleanliness, review.Ratings.Accuracy,
		review.Ratings.CheckIn, review.Ratings.Communication,
		review.Ratings.Location, review.Ratings.Value)
	if err != nil {
		return 0, err
	}
	if err := t.checkInsertResult(result); err != nil {
		return 0, err
	}
	review.ID = id
	return id, nil
}

func (t *dbTrans) GetListingReviews(listingID string) ([]*Review, error) {
	query := `SELECT r.id, r.guest_id, r.review_text, r.overall_rating,
			r.time, g.cleanliness, g.accuracy, g.check_in, g.communication,
			g.location, g.value
		FROM review AS r
		JOIN review_rating AS g ON g.review = r.id
		WHERE r.listing_id = $1`
	rows, err := t.tx.Query(query, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*Review{}
	for rows.Next() {
		review := &Review{ListingID: listingID}
		if err := rows.Scan(
			&review.ID, &review.GuestID, &review.Text, &review.Overall,
			&review.CreatedAt, &review.Ratings.Cleanliness,
			&review.Ratings.Accuracy, &review.Ratings.CheckIn,
			&review.Ratings.Communication, &review.Ratings.Location,
			&review.Ratings.Value); err != nil {
			return nil, err
		}
		result = append(result, review)
	}
	return result, rows.Err()
}

////////////////////////////////////////////////////////////////////////////////

func (t *dbTrans) CreateReservation(record *ReservationRecord) error {
	query := `INSERT INTO reservation(id, guesty_reservation_id, quote_id,
			guest_id, guest_email, guest_first_name, guest_last_name,
			listing_id, listing_title, unit_type_id, confirmation_code,
			status, check_in, check_out, check_in_date, check_out_date,
			source, channel, guests_count, number_of_adults,
			number_of_children, number_of_infants, number_of_pets,
			creation_time, reserved_expires_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)`
	result, err := t.tx.Exec(query,
		record.ID, record.GuestyReservationID, record.QuoteID,
		record.GuestID, record.GuestEmail, record.GuestFirstName,
		record.GuestLastName, record.ListingID, record.ListingTitle,
		record.UnitTypeID, record.ConfirmationCode, record.Status,
		record.CheckIn, record.CheckOut, record.CheckInDate,
		record.CheckOutDate, record.Source, record.Channel,
		record.GuestsCount, record.NumberOfAdults, record.NumberOfChildren,
		record.NumberOfInfants, record.NumberOfPets, record.CreationTime,
		record.ReservedExpiresAt)
	if err != nil {
		return err
	}
	return t.checkInsertResult(result)
}

func (t *dbTrans) GetCheckedOutReservations(
	from, till time.Time) ([]*ReservationRecord, error) {
	query := `SELECT id, guesty_reservation_id, guest_id, guest_email,
			guest_first_name, guest_last_name, listing_id, listing_title,
			confirmation_code, status, check_out
		FROM reservation
		WHERE check_out >= $1 AND check_out < $2`
	rows, err := t.tx.Query(query, from, till)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*ReservationRecord{}
	for rows.Next() {
		record := &ReservationRecord{}
		if err := rows.Scan(
			&record.ID, &record.GuestyReservationID, &record.GuestID,
			&record.GuestEmail, &record.GuestFirstName,
			&record.GuestLastName, &record.ListingID, &record.ListingTitle,
			&record.ConfirmationCode, &record.Status,
			&record.CheckOut); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	return result, rows.Err()
}

////////////////////////////////////////////////////////////////////////////////

func (t *dbTrans) CreateQuote(record *QuoteRecord) error {
	query := `INSERT INTO quote(id, guesty_quote_id, listing_id,
			check_in_date, check_out_date, source, guests_count,
			ignore_calendar, ignore_terms, ignore_blocks, coupon_code, time)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	result, err := t.tx.Exec(query,
		record.ID, record.GuestyQuoteID, record.ListingID,
		record.CheckInDate, record.CheckOutDate, record.Source,
		record.GuestsCount, record.IgnoreCalendar, record.IgnoreTerms,
		record.IgnoreBlocks, record.CouponCode, record.CreatedAt)
	if err != nil {
		return err
	}
	return t.checkInsertResult(result)
}

////////////////////////////////////////////////////////////////////////////////

func (t *dbTrans) FindListingCoords(
	listingID string) (*ListingCoords, error) {
	query := `SELECT listing_id, latitude, longitude
		FROM property_coordinate WHERE listing_id = $1`
	result := &ListingCoords{}
	switch err := t.tx.QueryRow(query, listingID).Scan(
		&result.ListingID, &result.Latitude, &result.Longitude); {
	case err == sql.ErrNoRows:
		return nil, nil
	case err != nil:
		return nil, err
	}
	return result, nil
}

func (t *dbTrans) GetListingCoords(
	excludeListingID string) ([]*ListingCoords, error) {
	query := `SELECT listing_id, latitude, longitude
		FROM property_coordinate WHERE listing_id != $1`
	rows, err := t.tx.Query(query, excludeListingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*ListingCoords{}
	for rows.Next() {
		coords := &ListingCoords{}
		if err := rows.Scan(
			&coords.ListingID, &coords.Latitude,
			&coords.Longitude); err != nil {
			return nil, err
		}
		result = append(result, coords)
	}
	return result, rows.Err()
}

////////////////////////////////////////////////////////////////////////////////

func (t *dbTrans) GetListingVideos(
	listingID string) ([]*ListingVideo, error) {
	query := `SELECT id, listing_id, title, url, time
		FROM listing_video WHERE listing_id = $1`
	rows, err := t.tx.Query(query, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []*ListingVideo{}
	for rows.Next() {
		video := &ListingVideo{}
		if err := rows.Scan(
			&video.ID, &video.ListingID, &video.Title, &video.URL,
			&video.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, video)
	}
	return result, rows.Err()
}
