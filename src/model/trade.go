package model

import (
	"database/sql"
	"time"

	"github.com/username/lotfolio/backend/src/models"
)

// CreateTrade inserts a new trade for its user and fills in the assigned ID.
func CreateTrade(db *sql.DB, t *models.Trade) error {
	t.CreatedAt = time.Now()
	query := `
	INSERT INTO trades (user_id, ticker, action, quantity, price, trade_date, trade_time, notes, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := db.Exec(query, t.UserID, t.Ticker, t.Action, t.Quantity, t.Price, t.TradeDate, t.TradeTime, t.Notes, t.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

// GetTradeByID fetches one trade, scoped to its owner.
func GetTradeByID(db *sql.DB, id, userID int64) (*models.Trade, error) {
	query := `
	SELECT id, user_id, ticker, action, quantity, price, trade_date, trade_time, notes, created_at
	FROM trades
	WHERE id = ? AND user_id = ?`
	var t models.Trade
	err := db.QueryRow(query, id, userID).Scan(
		&t.ID, &t.UserID, &t.Ticker, &t.Action, &t.Quantity, &t.Price,
		&t.TradeDate, &t.TradeTime, &t.Notes, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTrade rewrites every user-editable field of the trade. Returns
// sql.ErrNoRows when the trade does not exist or belongs to another user.
func UpdateTrade(db *sql.DB, t *models.Trade) error {
	query := `
	UPDATE trades SET ticker = ?, action = ?, quantity = ?, price = ?, trade_date = ?, trade_time = ?, notes = ?
	WHERE id = ? AND user_id = ?`
	res, err := db.Exec(query, t.Ticker, t.Action, t.Quantity, t.Price, t.TradeDate, t.TradeTime, t.Notes, t.ID, t.UserID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteTrade removes one trade, scoped to its owner. Returns sql.ErrNoRows
// when nothing was deleted.
func DeleteTrade(db *sql.DB, id, userID int64) error {
	res, err := db.Exec(`DELETE FROM trades WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetTradesForUser returns one user's trades matching the filter, sorted
// ascending by trade date then time. A single call gives the processors one
// consistent snapshot; both report components run over the same result.
func GetTradesForUser(db *sql.DB, userID int64, filter models.TradeFilter) ([]models.Trade, error) {
	query := `
	SELECT id, user_id, ticker, action, quantity, price, trade_date, trade_time, notes, created_at
	FROM trades
	WHERE user_id = ?`
	args := []interface{}{userID}

	if filter.Ticker != "" {
		query += ` AND ticker = ?`
		args = append(args, filter.Ticker)
	}
	if filter.Month != "" {
		// trade_date is stored as YYYY-MM-DD, so the month is its prefix.
		query += ` AND SUBSTR(trade_date, 1, 7) = ?`
		args = append(args, filter.Month)
	}
	if filter.StartDate != "" {
		query += ` AND trade_date >= ?`
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		query += ` AND trade_date <= ?`
		args = append(args, filter.EndDate)
	}
	query += ` ORDER BY trade_date ASC, trade_time ASC, id ASC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []models.Trade
	for rows.Next() {
		var t models.Trade
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Ticker, &t.Action, &t.Quantity, &t.Price,
			&t.TradeDate, &t.TradeTime, &t.Notes, &t.CreatedAt); err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return trades, nil
}

// GetCumulativeQuantities sums bought and sold share counts for one user and
// ticker, excluding the trade identified by excludeID (pass 0 to exclude
// nothing; updates exclude the row being replaced). It backs the write-time
// invariant that sells never exceed buys.
func GetCumulativeQuantities(db *sql.DB, userID int64, ticker string, excludeID int64) (bought, sold int, err error) {
	query := `
	SELECT
		COALESCE(SUM(CASE WHEN action = 'BUY' THEN quantity ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN action = 'SELL' THEN quantity ELSE 0 END), 0)
	FROM trades
	WHERE user_id = ? AND ticker = ? AND id != ?`
	err = db.QueryRow(query, userID, ticker, excludeID).Scan(&bought, &sold)
	return bought, sold, err
}
