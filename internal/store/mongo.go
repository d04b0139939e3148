package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Zachdehooge/damage-map/internal/report"
)

const reportsCollection = "damage_reports"

// Mongo stores reports in the damage_reports collection.
type Mongo struct {
	client  *mongo.Client
	reports *mongo.Collection
}

type reportDoc struct {
	ID           string    `bson:"_id"`
	UserID       string    `bson:"user_id,omitempty"`
	Latitude     float64   `bson:"latitude"`
	Longitude    float64   `bson:"longitude"`
	DamageInfo   string    `bson:"damage_info,omitempty"`
	HealthStatus string    `bson:"health_status,omitempty"`
	RescueNeeded *bool     `bson:"rescue_needed,omitempty"`
	PeopleCount  *int      `bson:"people_count,omitempty"`
	AgeGroup     string    `bson:"age_group,omitempty"`
	Comment      string    `bson:"comment,omitempty"`
	Pending      bool      `bson:"pending"`
	CreatedAt    time.Time `bson:"created_at"`
}

// OpenMongo connects, pings and ensures the lookup index used by SetDamage.
func OpenMongo(ctx context.Context, uri, db string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect error: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping error: %w", err)
	}

	m := &Mongo{
		client:  client,
		reports: client.Database(db).Collection(reportsCollection),
	}
	if _, err := m.reports.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "pending", Value: 1}, {Key: "created_at", Value: -1}},
	}); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo index error: %w", err)
	}
	return m, nil
}

func (m *Mongo) Add(ctx context.Context, r report.Report) (report.Report, error) {
	r = stamp(r)
	if _, err := m.reports.InsertOne(ctx, toDoc(r)); err != nil {
		return report.Report{}, fmt.Errorf("insert report: %w", err)
	}
	return r, nil
}

func (m *Mongo) SetDamage(ctx context.Context, userID, damage string) (report.Report, bool, error) {
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetReturnDocument(options.After)

	var doc reportDoc
	err := m.reports.FindOneAndUpdate(ctx,
		bson.M{"user_id": userID, "pending": true},
		bson.M{"$set": bson.M{"damage_info": damage, "pending": false}},
		opts,
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return report.Report{}, false, nil
	}
	if err != nil {
		return report.Report{}, false, fmt.Errorf("update report: %w", err)
	}
	return fromDoc(doc), true, nil
}

func (m *Mongo) List(ctx context.Context) ([]report.Report, error) {
	cur, err := m.reports.Find(ctx,
		bson.M{"pending": false},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	var docs []reportDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode reports: %w", err)
	}
	out := make([]report.Report, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromDoc(d))
	}
	return out, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func toDoc(r report.Report) reportDoc {
	d := reportDoc{
		ID:           r.ID,
		UserID:       r.UserID,
		Latitude:     r.Lat,
		Longitude:    r.Lng,
		DamageInfo:   r.Damage,
		HealthStatus: r.HealthStatus,
		PeopleCount:  r.PeopleCount,
		AgeGroup:     r.AgeGroup,
		Comment:      r.Comment,
		Pending:      r.Pending,
		CreatedAt:    r.CreatedAt,
	}
	switch r.Rescue {
	case report.RescueYes:
		v := true
		d.RescueNeeded = &v
	case report.RescueNo:
		v := false
		d.RescueNeeded = &v
	}
	return d
}

func fromDoc(d reportDoc) report.Report {
	r := report.Report{
		ID:           d.ID,
		UserID:       d.UserID,
		Lat:          d.Latitude,
		Lng:          d.Longitude,
		Damage:       d.DamageInfo,
		HealthStatus: d.HealthStatus,
		PeopleCount:  d.PeopleCount,
		AgeGroup:     d.AgeGroup,
		Comment:      d.Comment,
		Pending:      d.Pending,
		CreatedAt:    d.CreatedAt,
	}
	if d.RescueNeeded != nil {
		r.Rescue = report.ParseRescue(*d.RescueNeeded)
	}
	return r
}
