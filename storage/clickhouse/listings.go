package clickhouse

import (
	"context"
	"time"

	"github.com/google/uuid"
	"hermannm.dev/wrap"

	"github.com/brightboard/brightboard/storage"
)

type paymentRow struct {
	ID        string    `ch:"id"`
	UserID    string    `ch:"user_id"`
	Amount    float64   `ch:"amount"`
	Currency  string    `ch:"currency"`
	Category  string    `ch:"category"`
	Status    string    `ch:"status"`
	CreatedAt time.Time `ch:"created_at"`
}

type userRow struct {
	ID        string    `ch:"id"`
	Email     string    `ch:"email"`
	Name      string    `ch:"name"`
	Role      string    `ch:"role"`
	CreatedAt time.Time `ch:"created_at"`
}

func (db ClickHouseDB) InsertPayments(ctx context.Context, payments []storage.Payment) error {
	batch, err := db.conn.PrepareBatch(ctx, "INSERT INTO "+paymentsTable)
	if err != nil {
		return wrap.Error(err, "failed to prepare payment insert batch")
	}

	for i, payment := range payments {
		err := batch.Append(
			payment.ID.String(),
			payment.UserID,
			payment.Amount,
			payment.Currency,
			payment.Category,
			payment.Status,
			payment.CreatedAt,
		)
		if err != nil {
			return wrap.Errorf(err, "failed to add payment %d to insert batch", i)
		}
	}

	if err := batch.Send(); err != nil {
		return wrap.Error(err, "payment insert failed")
	}

	return nil
}

func (db ClickHouseDB) ListPayments(
	ctx context.Context,
	page storage.PageRequest,
) (storage.Page[storage.Payment], error) {
	total, err := db.countRows(ctx, paymentsTable)
	if err != nil {
		return storage.Page[storage.Payment]{}, err
	}

	var query QueryBuilder
	query.WriteString("SELECT id, user_id, amount, currency, category, status, created_at FROM ")
	query.WriteIdentifier(paymentsTable)
	query.WriteString(" ORDER BY created_at DESC LIMIT ")
	query.WriteInt(page.PageSize)
	query.WriteString(" OFFSET ")
	query.WriteInt(page.Offset())

	var rows []paymentRow
	if err := db.conn.Select(ctx, &rows, query.String()); err != nil {
		return storage.Page[storage.Payment]{}, wrap.Error(err, "payment listing query failed")
	}

	payments := make([]storage.Payment, 0, len(rows))
	for _, row := range rows {
		id, err := uuid.Parse(row.ID)
		if err != nil {
			return storage.Page[storage.Payment]{}, wrap.Errorf(
				err,
				"invalid payment ID '%s' in database",
				row.ID,
			)
		}

		payments = append(payments, storage.Payment{
			ID:        id,
			UserID:    row.UserID,
			Amount:    row.Amount,
			Currency:  row.Currency,
			Category:  row.Category,
			Status:    row.Status,
			CreatedAt: row.CreatedAt,
		})
	}

	return storage.NewPage(payments, int(total), page), nil
}

func (db ClickHouseDB) InsertUsers(ctx context.Context, users []storage.User) error {
	batch, err := db.conn.PrepareBatch(ctx, "INSERT INTO "+usersTable)
	if err != nil {
		return wrap.Error(err, "failed to prepare user insert batch")
	}

	for i, user := range users {
		err := batch.Append(user.ID.String(), user.Email, user.Name, user.Role, user.CreatedAt)
		if err != nil {
			return wrap.Errorf(err, "failed to add user %d to insert batch", i)
		}
	}

	if err := batch.Send(); err != nil {
		return wrap.Error(err, "user insert failed")
	}

	return nil
}

func (db ClickHouseDB) ListUsers(
	ctx context.Context,
	page storage.PageRequest,
) (storage.Page[storage.User], error) {
	total, err := db.countRows(ctx, usersTable)
	if err != nil {
		return storage.Page[storage.User]{}, err
	}

	var query QueryBuilder
	query.WriteString("SELECT id, email, name, role, created_at FROM ")
	query.WriteIdentifier(usersTable)
	query.WriteString(" ORDER BY created_at DESC LIMIT ")
	query.WriteInt(page.PageSize)
	query.WriteString(" OFFSET ")
	query.WriteInt(page.Offset())

	var rows []userRow
	if err := db.conn.Select(ctx, &rows, query.String()); err != nil {
		return storage.Page[storage.User]{}, wrap.Error(err, "user listing query failed")
	}

	users := make([]storage.User, 0, len(rows))
	for _, row := range rows {
		id, err := uuid.Parse(row.ID)
		if err != nil {
			return storage.Page[storage.User]{}, wrap.Errorf(
				err,
				"invalid user ID '%s' in database",
				row.ID,
			)
		}

		users = append(users, storage.User{
			ID:        id,
			Email:     row.Email,
			Name:      row.Name,
			Role:      row.Role,
			CreatedAt: row.CreatedAt,
		})
	}

	return storage.NewPage(users, int(total), page), nil
}
