// Package mongodb persists the catalog, the OAuth state set and the
// singleton provider token in a MongoDB database. Atomicity relies on the
// store's native primitives: FindOneAndDelete for one-time states and an
// upsert keyed by a fixed id for the token.
package mongodb

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/felippeximenes/modeloloja/internal/server/repository"
	"github.com/felippeximenes/modeloloja/internal/shared/models"
)

// stateTTL bounds how long an unconsumed OAuth state survives in storage.
// Consumption itself is single-use via FindOneAndDelete; the TTL index only
// sweeps abandoned states.
const stateTTL = 10 * time.Minute

// tokenKey is the fixed id of the singleton token record.
const tokenKey = "current"

type Repository struct {
	client *mongo.Client
	db     *mongo.Database
}

func New(ctx context.Context, uri, dbName string) (*Repository, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	r := &Repository{client: client, db: client.Database(dbName)}
	if err := r.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return r, nil
}

func (r *Repository) ensureIndexes(ctx context.Context) error {
	_, err := r.db.Collection("oauth_states").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "created_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(stateTTL / time.Second)),
	})
	return err
}

func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// Products

type productDoc struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Name      string        `bson:"name"`
	Price     float64       `bson:"price"`
	WeightKg  float64       `bson:"weight_kg"`
	WidthCm   float64       `bson:"width_cm"`
	HeightCm  float64       `bson:"height_cm"`
	LengthCm  float64       `bson:"length_cm"`
	SKU       string        `bson:"sku,omitempty"`
	Image     string        `bson:"image,omitempty"`
	CreatedAt time.Time     `bson:"created_at"`
}

func (d productDoc) model() models.Product {
	return models.Product{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Price:     d.Price,
		WeightKg:  d.WeightKg,
		WidthCm:   d.WidthCm,
		HeightCm:  d.HeightCm,
		LengthCm:  d.LengthCm,
		SKU:       d.SKU,
		Image:     d.Image,
		CreatedAt: d.CreatedAt,
	}
}

func (r *Repository) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	doc := productDoc{
		Name:      p.Name,
		Price:     p.Price,
		WeightKg:  p.WeightKg,
		WidthCm:   p.WidthCm,
		HeightCm:  p.HeightCm,
		LengthCm:  p.LengthCm,
		SKU:       p.SKU,
		Image:     p.Image,
		CreatedAt: time.Now().UTC(),
	}
	res, err := r.db.Collection("products").InsertOne(ctx, doc)
	if err != nil {
		return models.Product{}, err
	}
	id, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return models.Product{}, errors.New("unexpected inserted id type")
	}
	doc.ID = id
	return doc.model(), nil
}

func (r *Repository) GetProduct(ctx context.Context, id string) (models.Product, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return models.Product{}, repository.ErrInvalidID
	}
	var doc productDoc
	err = r.db.Collection("products").FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Product{}, repository.ErrNotFound
	}
	if err != nil {
		return models.Product{}, err
	}
	return doc.model(), nil
}

func (r *Repository) ListProducts(ctx context.Context, limit int) ([]models.Product, error) {
	cur, err := r.db.Collection("products").Find(ctx, bson.M{},
		options.Find().SetLimit(int64(limit)).SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []productDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

// OAuth states

func (r *Repository) SaveOAuthState(ctx context.Context, state string) error {
	_, err := r.db.Collection("oauth_states").InsertOne(ctx, bson.M{
		"state":      state,
		"created_at": time.Now().UTC(),
	})
	return err
}

func (r *Repository) ConsumeOAuthState(ctx context.Context, state string) (bool, error) {
	err := r.db.Collection("oauth_states").FindOneAndDelete(ctx, bson.M{"state": state}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Token

// tokenDoc deliberately has no omitempty tags: a new exchange replaces the
// record wholesale, so empty fields must overwrite whatever was there.
type tokenDoc struct {
	AccessToken  string     `bson:"access_token"`
	RefreshToken string     `bson:"refresh_token"`
	TokenType    string     `bson:"token_type"`
	Scope        string     `bson:"scope"`
	ExpiresIn    int64      `bson:"expires_in"`
	ExpiresAt    *time.Time `bson:"expires_at"`
	UpdatedAt    time.Time  `bson:"updated_at"`
	Sandbox      bool       `bson:"sandbox"`
}

func (r *Repository) SaveToken(ctx context.Context, t models.TokenRecord) error {
	doc := tokenDoc{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Scope:        t.Scope,
		ExpiresIn:    t.ExpiresIn,
		ExpiresAt:    t.ExpiresAt,
		UpdatedAt:    t.UpdatedAt,
		Sandbox:      t.Sandbox,
	}
	_, err := r.db.Collection("melhorenvio_tokens").ReplaceOne(ctx,
		bson.M{"_id": tokenKey},
		doc,
		options.Replace().SetUpsert(true))
	return err
}

func (r *Repository) CurrentToken(ctx context.Context) (models.TokenRecord, bool, error) {
	var doc tokenDoc
	err := r.db.Collection("melhorenvio_tokens").FindOne(ctx, bson.M{"_id": tokenKey}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.TokenRecord{}, false, nil
	}
	if err != nil {
		return models.TokenRecord{}, false, err
	}
	return models.TokenRecord{
		AccessToken:  doc.AccessToken,
		RefreshToken: doc.RefreshToken,
		TokenType:    doc.TokenType,
		Scope:        doc.Scope,
		ExpiresIn:    doc.ExpiresIn,
		ExpiresAt:    doc.ExpiresAt,
		UpdatedAt:    doc.UpdatedAt,
		Sandbox:      doc.Sandbox,
	}, true, nil
}

// Audit trail

func (r *Repository) SaveShipment(ctx context.Context, rec repository.AuditRecord) error {
	return r.saveAudit(ctx, "melhorenvio_shipments", rec)
}

func (r *Repository) SaveCheckout(ctx context.Context, rec repository.AuditRecord) error {
	return r.saveAudit(ctx, "melhorenvio_checkouts", rec)
}

func (r *Repository) saveAudit(ctx context.Context, collection string, rec repository.AuditRecord) error {
	_, err := r.db.Collection(collection).InsertOne(ctx, bson.M{
		"created_at": rec.CreatedAt,
		"request":    rec.Request,
		"response":   rawToAny(rec.Response),
		"sandbox":    rec.Sandbox,
	})
	return err
}

// rawToAny stores provider JSON as a real document so the audit trail is
// queryable; anything unparseable is kept as a string.
func rawToAny(raw json.RawMessage) any {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}

// Status checks

type statusCheckDoc struct {
	ID         string    `bson:"_id"`
	ClientName string    `bson:"client_name"`
	Timestamp  time.Time `bson:"timestamp"`
}

func (r *Repository) SaveStatusCheck(ctx context.Context, sc models.StatusCheck) error {
	_, err := r.db.Collection("status_checks").InsertOne(ctx, statusCheckDoc{
		ID:         sc.ID,
		ClientName: sc.ClientName,
		Timestamp:  sc.Timestamp,
	})
	return err
}

func (r *Repository) ListStatusChecks(ctx context.Context, limit int) ([]models.StatusCheck, error) {
	cur, err := r.db.Collection("status_checks").Find(ctx, bson.M{},
		options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, err
	}
	var docs []statusCheckDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.StatusCheck, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.StatusCheck{ID: d.ID, ClientName: d.ClientName, Timestamp: d.Timestamp})
	}
	return out, nil
}
