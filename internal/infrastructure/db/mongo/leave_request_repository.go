package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/staffhub/hr-portal/internal/core/domain"
)

const collectionLeaveRequests = "leave_requests"

// LeaveRequestRepository implements ports.LeaveRequestRepository using MongoDB.
type LeaveRequestRepository struct {
	col *mongo.Collection
}

func NewLeaveRequestRepository(db *mongo.Database) *LeaveRequestRepository {
	return &LeaveRequestRepository{col: db.Collection(collectionLeaveRequests)}
}

type mongoLeaveRequest struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	EmployeeID    string             `bson:"employee_id"`
	Type          string             `bson:"type"`
	StartDate     time.Time          `bson:"start_date"`
	EndDate       time.Time          `bson:"end_date"`
	Days          float64            `bson:"days"`
	Reason        string             `bson:"reason"`
	Status        string             `bson:"status"`
	ApproverID    string             `bson:"approver_id,omitempty"`
	DecisionNotes string             `bson:"decision_notes,omitempty"`
	ApprovedAt    *time.Time         `bson:"approved_at,omitempty"`
	CreatedAt     time.Time          `bson:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at"`
}

func (mr *mongoLeaveRequest) toDomain() *domain.LeaveRequest {
	return &domain.LeaveRequest{
		ID:            mr.ID.Hex(),
		EmployeeID:    mr.EmployeeID,
		Type:          mr.Type,
		StartDate:     mr.StartDate,
		EndDate:       mr.EndDate,
		Days:          mr.Days,
		Reason:        mr.Reason,
		Status:        domain.LeaveStatus(mr.Status),
		ApproverID:    mr.ApproverID,
		DecisionNotes: mr.DecisionNotes,
		ApprovedAt:    mr.ApprovedAt,
		CreatedAt:     mr.CreatedAt,
		UpdatedAt:     mr.UpdatedAt,
	}
}

func (r *LeaveRequestRepository) Create(ctx context.Context, req *domain.LeaveRequest) (*domain.LeaveRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoLeaveRequest{
		EmployeeID: req.EmployeeID,
		Type:       req.Type,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Days:       req.Days,
		Reason:     req.Reason,
		Status:     string(req.Status),
		CreatedAt:  req.CreatedAt,
		UpdatedAt:  req.UpdatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert leave request: %w", err)
	}

	created := *req
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *LeaveRequestRepository) FindByID(ctx context.Context, id string) (*domain.LeaveRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrRequestNotFound
	}

	var mr mongoLeaveRequest
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&mr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("find leave request: %w", err)
	}
	return mr.toDomain(), nil
}

// Decide flips the request to the terminal status conditionally on it still
// being pending. The condition makes concurrent decisions on one request
// yield exactly one winner; the loser sees ErrInvalidTransition.
func (r *LeaveRequestRepository) Decide(ctx context.Context, id string, status domain.LeaveStatus, approverID, notes string, at time.Time) (*domain.LeaveRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrRequestNotFound
	}

	filter := bson.M{"_id": oid, "status": string(domain.LeavePending)}
	update := bson.M{"$set": bson.M{
		"status":         string(status),
		"approver_id":    approverID,
		"decision_notes": notes,
		"approved_at":    at,
		"updated_at":     at,
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mr mongoLeaveRequest
	err = r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&mr)
	if err == nil {
		return mr.toDomain(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("decide leave request: %w", err)
	}

	// No pending document matched: distinguish a missing request from an
	// already-decided one.
	if _, err := r.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, domain.ErrInvalidTransition
}

// RevertDecision compensates a decision whose ledger write failed: the
// request returns to pending and the approver fields are cleared.
func (r *LeaveRequestRepository) RevertDecision(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrRequestNotFound
	}

	update := bson.M{
		"$set":   bson.M{"status": string(domain.LeavePending), "updated_at": time.Now().UTC()},
		"$unset": bson.M{"approver_id": "", "decision_notes": "", "approved_at": ""},
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("revert decision: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

func (r *LeaveRequestRepository) ListByEmployee(ctx context.Context, employeeID string, year int) ([]*domain.LeaveRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"employee_id": employeeID}
	if year > 0 {
		filter["start_date"] = bson.M{
			"$gte": time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
			"$lt":  time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC),
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list leave requests: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeRequests(ctx, cursor)
}

func (r *LeaveRequestRepository) ListByStatus(ctx context.Context, status domain.LeaveStatus, page, limit int) ([]*domain.LeaveRequest, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"status": string(status)}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count leave requests: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list leave requests: %w", err)
	}
	defer cursor.Close(ctx)

	out, err := decodeRequests(ctx, cursor)
	return out, total, err
}

func decodeRequests(ctx context.Context, cursor *mongo.Cursor) ([]*domain.LeaveRequest, error) {
	var out []*domain.LeaveRequest
	for cursor.Next(ctx) {
		var mr mongoLeaveRequest
		if err := cursor.Decode(&mr); err != nil {
			return nil, fmt.Errorf("decode leave request: %w", err)
		}
		out = append(out, mr.toDomain())
	}
	return out, cursor.Err()
}

// EnsureIndexes creates the query indexes for leave requests.
func (r *LeaveRequestRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "employee_id", Value: 1}, {Key: "start_date", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
