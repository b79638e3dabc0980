package repository

import (
	"context"
	"errors"
	"time"

	"taskboard-backend/internal/task/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const tasksCollection = "tasks"

// mongoTaskRepository implements TaskRepository on a MongoDB collection.
// Progress notes are an embedded array; appends use $push in the same
// FindOneAndUpdate that sets the other fields.
type mongoTaskRepository struct {
	coll *mongo.Collection
}

func NewMongoTaskRepository(db *mongo.Database) TaskRepository {
	return &mongoTaskRepository{coll: db.Collection(tasksCollection)}
}

// MigrateMongo creates the indexes used by task listings.
func MigrateMongo(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(tasksCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "assignedTo", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	return err
}

func (r *mongoTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	task.CreatedAt = now
	task.UpdatedAt = now
	// $push on a null field fails, so the array must exist from the start.
	if task.ProgressNotes == nil {
		task.ProgressNotes = []domain.ProgressNote{}
	}
	_, err := r.coll.InsertOne(ctx, task)
	return err
}

func (r *mongoTaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	normalizeNotes(&task)
	return &task, nil
}

func (r *mongoTaskRepository) Find(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	query := bson.M{}
	if !filter.MatchesAll() {
		query["assignedTo"] = filter.AssignedTo
	}
	cursor, err := r.coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tasks := []*domain.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	for _, t := range tasks {
		normalizeNotes(t)
	}
	return tasks, nil
}

func (r *mongoTaskRepository) Apply(ctx context.Context, id string, m *domain.Mutation) (*domain.Task, error) {
	var task domain.Task
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, mongoUpdate(m), opts).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	normalizeNotes(&task)
	return &task, nil
}

func (r *mongoTaskRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// mongoUpdate builds the single update document for a mutation.
func mongoUpdate(m *domain.Mutation) bson.M {
	set := bson.M{"updatedAt": m.UpdatedAt}
	unset := bson.M{}
	if m.Title != nil {
		set["title"] = *m.Title
	}
	if m.Description != nil {
		set["description"] = *m.Description
	}
	if m.Status != nil {
		set["status"] = *m.Status
	}
	if m.Priority != nil {
		set["priority"] = *m.Priority
	}
	if m.Assignment != nil {
		set["assignedTo"] = m.Assignment.AssignedTo
		set["isSelfTask"] = m.Assignment.IsSelfTask
	}
	if m.DueDateSet {
		if m.DueDate != nil {
			set["dueDate"] = *m.DueDate
		} else {
			unset["dueDate"] = ""
		}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	if m.AppendNote != nil {
		update["$push"] = bson.M{"progressNotes": m.AppendNote}
	}
	return update
}
