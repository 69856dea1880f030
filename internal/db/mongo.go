package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Joseda-hg/lazystreak/internal/model"
)

const (
	mongoTasksCollection    = "tasks"
	mongoActivityCollection = "activity"
)

type mongoTask struct {
	ID        string    `bson:"_id"`
	Date      time.Time `bson:"date"`
	Task      string    `bson:"task"`
	Status    string    `bson:"status"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// mongoDay is the per-date marker document; its _id is the "YYYY-MM-DD" key.
type mongoDay struct {
	Day      string    `bson:"_id"`
	MarkedAt time.Time `bson:"marked_at"`
}

// MongoStore keeps one document per task and one marker document per active day.
type MongoStore struct {
	client   *mongo.Client
	tasks    *mongo.Collection
	activity *mongo.Collection
	now      func() time.Time
}

func OpenMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo uri is required")
	}
	if database == "" {
		return nil, fmt.Errorf("mongo database is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return NewMongoStore(client, database), nil
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	db := client.Database(database)
	return &MongoStore{
		client:   client,
		tasks:    db.Collection(mongoTasksCollection),
		activity: db.Collection(mongoActivityCollection),
		now:      time.Now,
	}
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) ListTasks(ctx context.Context) ([]model.Task, error) {
	cursor, err := s.tasks.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}

	var docs []mongoTask
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode tasks: %w", err)
	}

	tasks := make([]model.Task, 0, len(docs))
	for _, doc := range docs {
		status, err := model.ParseStatus(doc.Status)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", doc.ID, err)
		}
		tasks = append(tasks, model.Task{
			ID:          doc.ID,
			Date:        model.Day(doc.Date.UTC()),
			Description: doc.Task,
			Status:      status,
			CreatedAt:   doc.CreatedAt,
			UpdatedAt:   doc.UpdatedAt,
		})
	}
	sortTasks(tasks)
	return tasks, nil
}

func (s *MongoStore) AddTask(ctx context.Context, input TaskInput) (model.Task, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return model.Task{}, err
	}

	now := s.now().UTC()
	doc := mongoTask{
		ID:        newTaskID(),
		Date:      input.Date,
		Task:      input.Description,
		Status:    string(input.Status),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.tasks.InsertOne(ctx, doc); err != nil {
		return model.Task{}, fmt.Errorf("insert task: %w", err)
	}

	return model.Task{
		ID:          doc.ID,
		Date:        input.Date,
		Description: input.Description,
		Status:      input.Status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (s *MongoStore) UpdateTaskStatus(ctx context.Context, id string, status model.Status) error {
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", status)
	}

	res, err := s.tasks.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":     string(status),
		"updated_at": s.now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	if res.MatchedCount == 0 {
		return notFound(id)
	}
	return nil
}

func (s *MongoStore) DeleteTask(ctx context.Context, id string) error {
	res, err := s.tasks.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

func (s *MongoStore) ActiveDays(ctx context.Context) ([]time.Time, error) {
	cursor, err := s.activity.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find activity: %w", err)
	}

	var docs []mongoDay
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode activity: %w", err)
	}

	days := make([]time.Time, 0, len(docs))
	for _, doc := range docs {
		day, err := model.ParseDay(doc.Day)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, nil
}

func (s *MongoStore) MarkActive(ctx context.Context, day time.Time) error {
	if day.IsZero() {
		return fmt.Errorf("date is required")
	}

	key := model.FormatDay(day)
	_, err := s.activity.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$setOnInsert": bson.M{"marked_at": s.now().UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("mark active day: %w", err)
	}
	return nil
}
