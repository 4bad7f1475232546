package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/staffhub/hr-portal/internal/core/domain"
)

const collectionLeaveBalances = "leave_balances"

// LeaveBalanceRepository implements ports.LeaveBalanceRepository using
// MongoDB. Both write paths are single server-side updates on the
// (employee_id, leave_type, year) row, so concurrent approvals against the
// same key serialize on the document without losing an increment.
type LeaveBalanceRepository struct {
	col *mongo.Collection
}

func NewLeaveBalanceRepository(db *mongo.Database) *LeaveBalanceRepository {
	return &LeaveBalanceRepository{col: db.Collection(collectionLeaveBalances)}
}

func balanceFilter(employeeID, leaveType string, year int) bson.M {
	return bson.M{"employee_id": employeeID, "leave_type": leaveType, "year": year}
}

// Upsert replaces total/used and recomputes remaining in one write. The
// $setOnInsert keeps the original creation timestamp on existing rows.
func (r *LeaveBalanceRepository) Upsert(ctx context.Context, employeeID, leaveType string, year int, total, used float64) (*domain.LeaveBalance, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"total":      total,
			"used":       used,
			"remaining":  total - used,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var b domain.LeaveBalance
	if err := r.col.FindOneAndUpdate(ctx, balanceFilter(employeeID, leaveType, year), update, opts).Decode(&b); err != nil {
		return nil, fmt.Errorf("upsert balance: %w", err)
	}
	return &b, nil
}

// ApplyApprovalDelta increments used and recomputes remaining inside a single
// aggregation-pipeline update, creating a zeroed row when the key is absent.
// The increment and the recompute cannot interleave with a concurrent
// approval because both live in one atomic document update.
func (r *LeaveBalanceRepository) ApplyApprovalDelta(ctx context.Context, employeeID, leaveType string, year int, delta float64) (*domain.LeaveBalance, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"total":      bson.M{"$ifNull": bson.A{"$total", 0.0}},
			"used":       bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$used", 0.0}}, delta}},
			"created_at": bson.M{"$ifNull": bson.A{"$created_at", now}},
			"updated_at": now,
		}}},
		{{Key: "$set", Value: bson.M{
			"remaining": bson.M{"$subtract": bson.A{"$total", "$used"}},
		}}},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var b domain.LeaveBalance
	if err := r.col.FindOneAndUpdate(ctx, balanceFilter(employeeID, leaveType, year), pipeline, opts).Decode(&b); err != nil {
		return nil, fmt.Errorf("apply approval delta: %w", err)
	}
	return &b, nil
}

func (r *LeaveBalanceRepository) Get(ctx context.Context, employeeID, leaveType string, year int) (*domain.LeaveBalance, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var b domain.LeaveBalance
	if err := r.col.FindOne(ctx, balanceFilter(employeeID, leaveType, year)).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("find balance: %w", err)
	}
	return &b, nil
}

func (r *LeaveBalanceRepository) ListByEmployee(ctx context.Context, employeeID string, year int) ([]*domain.LeaveBalance, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"employee_id": employeeID}
	if year > 0 {
		filter["year"] = year
	}

	opts := options.Find().SetSort(bson.D{{Key: "year", Value: -1}, {Key: "leave_type", Value: 1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer cursor.Close(ctx)

	var out []*domain.LeaveBalance
	for cursor.Next(ctx) {
		var b domain.LeaveBalance
		if err := cursor.Decode(&b); err != nil {
			return nil, fmt.Errorf("decode balance: %w", err)
		}
		out = append(out, &b)
	}
	return out, cursor.Err()
}

// EnsureIndexes creates the unique ledger key index.
func (r *LeaveBalanceRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "employee_id", Value: 1},
			{Key: "leave_type", Value: 1},
			{Key: "year", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}
