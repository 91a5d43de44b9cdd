package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/PrimeSandy/Alpha-Dev/internal/records/domain"
)

const (
	projectsCollection    = "projects"
	bookingsCollection    = "bookings"
	submissionsCollection = "submissions"
)

var _ Store = (*MongoStore)(nil)

// MongoStore persists records as documents keyed by ObjectID.
type MongoStore struct {
	client      *mongo.Client
	projects    *mongo.Collection
	bookings    *mongo.Collection
	submissions *mongo.Collection
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	db := client.Database(database)
	return &MongoStore{
		client:      client,
		projects:    db.Collection(projectsCollection),
		bookings:    db.Collection(bookingsCollection),
		submissions: db.Collection(submissionsCollection),
	}
}

type projectDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	UserID      string             `bson:"userId"`
	Name        string             `bson:"name"`
	Description string             `bson:"description,omitempty"`
	StartDate   time.Time          `bson:"startDate"`
	EndDate     *time.Time         `bson:"endDate,omitempty"`
	Budget      float64            `bson:"budget"`
	Status      string             `bson:"status"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

type bookingDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	ProjectID   primitive.ObjectID `bson:"projectId"`
	ProjectName string             `bson:"projectName"`
	Date        time.Time          `bson:"date"`
	Duration    string             `bson:"duration"`
	Status      string             `bson:"status"`
	UserID      string             `bson:"userId"`
	CreatedAt   time.Time          `bson:"createdAt"`
	Project     *projectDoc        `bson:"project,omitempty"`
}

type submissionDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Form      string             `bson:"form"`
	Fields    map[string]string  `bson:"fields"`
	Status    string             `bson:"status,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// EnsureIndexes creates the indexes the read paths rely on. It is safe to
// call on every start.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	if _, err := s.projects.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
	}); err != nil {
		return fmt.Errorf("projects index: %w", err)
	}
	if _, err := s.bookings.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "projectId", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("bookings indexes: %w", err)
	}
	if _, err := s.submissions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "form", Value: 1}, {Key: "createdAt", Value: -1}},
	}); err != nil {
		return fmt.Errorf("submissions index: %w", err)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) CreateProject(ctx context.Context, p *domain.Project) error {
	doc := toProjectDoc(p)
	doc.ID = primitive.NewObjectID()
	if _, err := s.projects.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	p.ID = doc.ID.Hex()
	return nil
}

func (s *MongoStore) GetProject(ctx context.Context, userID, id string) (*domain.Project, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrProjectNotFound
	}

	var doc projectDoc
	err = s.projects.FindOne(ctx, bson.M{"_id": oid, "userId": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find project: %w", err)
	}
	p := doc.toDomain()
	return &p, nil
}

func (s *MongoStore) ListProjects(ctx context.Context, userID string) ([]domain.Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.projects.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find projects: %w", err)
	}

	var docs []projectDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}

	out := make([]domain.Project, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (s *MongoStore) UpdateProject(ctx context.Context, userID, id string, patch domain.ProjectPatch, now time.Time) (*domain.Project, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrProjectNotFound
	}

	set := bson.M{"updatedAt": now}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.StartDate != nil {
		set["startDate"] = *patch.StartDate
	}
	if patch.EndDate != nil {
		set["endDate"] = *patch.EndDate
	}
	if patch.Budget != nil {
		set["budget"] = *patch.Budget
	}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc projectDoc
	err = s.projects.FindOneAndUpdate(ctx, bson.M{"_id": oid, "userId": userID}, bson.M{"$set": set}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	p := doc.toDomain()
	return &p, nil
}

func (s *MongoStore) ActivateProjectIfPending(ctx context.Context, userID, id string, now time.Time) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	res, err := s.projects.UpdateOne(ctx,
		bson.M{"_id": oid, "userId": userID, "status": string(domain.StatusPending)},
		bson.M{"$set": bson.M{"status": string(domain.StatusActive), "updatedAt": now}},
	)
	if err != nil {
		return false, fmt.Errorf("activate project: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

// DeleteProjectCascade deletes the project first and its bookings second.
// Bookings left behind by a failed second step are invisible to reads and
// are reclaimed by DeleteOrphanBookings.
func (s *MongoStore) DeleteProjectCascade(ctx context.Context, userID, id string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, domain.ErrProjectNotFound
	}

	res, err := s.projects.DeleteOne(ctx, bson.M{"_id": oid, "userId": userID})
	if err != nil {
		return 0, fmt.Errorf("delete project: %w", err)
	}
	if res.DeletedCount == 0 {
		return 0, domain.ErrProjectNotFound
	}

	bres, err := s.bookings.DeleteMany(ctx, bson.M{"projectId": oid})
	if err != nil {
		return 0, fmt.Errorf("delete bookings of project %s: %w", id, err)
	}
	return bres.DeletedCount, nil
}

func (s *MongoStore) CountProjectsByStatus(ctx context.Context, userID string) (map[domain.Status]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$status"}, {Key: "n", Value: bson.M{"$sum": 1}}}}},
	}
	cur, err := s.projects.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("count projects: %w", err)
	}

	var rows []struct {
		Status string `bson:"_id"`
		N      int64  `bson:"n"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode project counts: %w", err)
	}

	out := make(map[domain.Status]int64, len(rows))
	for _, r := range rows {
		out[domain.Status(r.Status)] = r.N
	}
	return out, nil
}

func (s *MongoStore) CreateBooking(ctx context.Context, b *domain.Booking) error {
	pid, err := primitive.ObjectIDFromHex(b.ProjectID)
	if err != nil {
		return domain.ErrProjectNotFound
	}

	doc := bookingDoc{
		ID:          primitive.NewObjectID(),
		ProjectID:   pid,
		ProjectName: b.ProjectName,
		Date:        b.Date,
		Duration:    b.Duration,
		Status:      string(b.Status),
		UserID:      b.UserID,
		CreatedAt:   b.CreatedAt,
	}
	if _, err := s.bookings.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	b.ID = doc.ID.Hex()
	return nil
}

// populated joins each booking with its project. The unwind stage drops
// bookings whose project is gone.
func populated(match bson.M, tail ...bson.D) mongo.Pipeline {
	p := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: projectsCollection},
			{Key: "localField", Value: "projectId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "project"},
		}}},
		{{Key: "$unwind", Value: "$project"}},
	}
	return append(p, tail...)
}

func (s *MongoStore) findBookings(ctx context.Context, pipeline mongo.Pipeline) ([]domain.Booking, error) {
	cur, err := s.bookings.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate bookings: %w", err)
	}

	var docs []bookingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}

	out := make([]domain.Booking, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (s *MongoStore) GetBooking(ctx context.Context, userID, id string) (*domain.Booking, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrBookingNotFound
	}

	items, err := s.findBookings(ctx, populated(bson.M{"_id": oid, "userId": userID}))
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrBookingNotFound
	}
	return &items[0], nil
}

func (s *MongoStore) ListBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	return s.findBookings(ctx, populated(bson.M{"userId": userID},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
	))
}

func (s *MongoStore) UpdateBooking(ctx context.Context, userID, id string, patch domain.BookingPatch) (*domain.Booking, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrBookingNotFound
	}

	set := bson.M{}
	if patch.Date != nil {
		set["date"] = *patch.Date
	}
	if patch.Duration != nil {
		set["duration"] = *patch.Duration
	}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}

	if len(set) > 0 {
		res, err := s.bookings.UpdateOne(ctx, bson.M{"_id": oid, "userId": userID}, bson.M{"$set": set})
		if err != nil {
			return nil, fmt.Errorf("update booking: %w", err)
		}
		if res.MatchedCount == 0 {
			return nil, domain.ErrBookingNotFound
		}
	}
	return s.GetBooking(ctx, userID, id)
}

func (s *MongoStore) DeleteBooking(ctx context.Context, userID, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrBookingNotFound
	}

	res, err := s.bookings.DeleteOne(ctx, bson.M{"_id": oid, "userId": userID})
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (s *MongoStore) CountBookings(ctx context.Context, userID string) (int64, error) {
	cur, err := s.bookings.Aggregate(ctx, populated(bson.M{"userId": userID},
		bson.D{{Key: "$count", Value: "n"}},
	))
	if err != nil {
		return 0, fmt.Errorf("count bookings: %w", err)
	}

	var rows []struct {
		N int64 `bson:"n"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("decode booking count: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].N, nil
}

func (s *MongoStore) CountBookingsForProject(ctx context.Context, projectID string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return 0, nil
	}
	n, err := s.bookings.CountDocuments(ctx, bson.M{"projectId": oid})
	if err != nil {
		return 0, fmt.Errorf("count project bookings: %w", err)
	}
	return n, nil
}

func (s *MongoStore) DeleteOrphanBookings(ctx context.Context) (int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: projectsCollection},
			{Key: "localField", Value: "projectId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "project"},
		}}},
		{{Key: "$match", Value: bson.M{"project": bson.M{"$size": 0}}}},
		{{Key: "$project", Value: bson.M{"_id": 1}}},
	}
	cur, err := s.bookings.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("find orphan bookings: %w", err)
	}

	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("decode orphan bookings: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	ids := make([]primitive.ObjectID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	res, err := s.bookings.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, fmt.Errorf("delete orphan bookings: %w", err)
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) CreateSubmission(ctx context.Context, sub *domain.Submission) error {
	doc := submissionDoc{
		ID:        primitive.NewObjectID(),
		Form:      string(sub.Form),
		Fields:    sub.Fields,
		Status:    string(sub.Status),
		CreatedAt: sub.CreatedAt,
	}
	if _, err := s.submissions.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	sub.ID = doc.ID.Hex()
	return nil
}

func (s *MongoStore) GetSubmission(ctx context.Context, id string) (*domain.Submission, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrSubmissionNotFound
	}

	var doc submissionDoc
	err = s.submissions.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find submission: %w", err)
	}
	sub := doc.toDomain()
	return &sub, nil
}

func (s *MongoStore) ListSubmissions(ctx context.Context, form domain.FormKind, limit int) ([]domain.Submission, error) {
	filter := bson.M{}
	if form != "" {
		filter["form"] = string(form)
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := s.submissions.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find submissions: %w", err)
	}
	var docs []submissionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode submissions: %w", err)
	}

	out := make([]domain.Submission, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func toProjectDoc(p *domain.Project) projectDoc {
	return projectDoc{
		UserID:      p.UserID,
		Name:        p.Name,
		Description: p.Description,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Budget:      p.Budget,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (d projectDoc) toDomain() domain.Project {
	return domain.Project{
		ID:          d.ID.Hex(),
		UserID:      d.UserID,
		Name:        d.Name,
		Description: d.Description,
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		Budget:      d.Budget,
		Status:      domain.Status(d.Status),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (d bookingDoc) toDomain() domain.Booking {
	b := domain.Booking{
		ID:          d.ID.Hex(),
		ProjectID:   d.ProjectID.Hex(),
		ProjectName: d.ProjectName,
		Date:        d.Date,
		Duration:    d.Duration,
		Status:      domain.Status(d.Status),
		UserID:      d.UserID,
		CreatedAt:   d.CreatedAt,
	}
	if d.Project != nil {
		p := d.Project.toDomain()
		b.Project = &p
	}
	return b
}

func (d submissionDoc) toDomain() domain.Submission {
	fields := d.Fields
	if fields == nil {
		fields = map[string]string{}
	}
	return domain.Submission{
		ID:        d.ID.Hex(),
		Form:      domain.FormKind(d.Form),
		Fields:    fields,
		Status:    domain.Status(d.Status),
		CreatedAt: d.CreatedAt,
	}
}
