package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Lixing-Zhang/shopcart-catalog/internal/models"
)

const (
	productsCollection  = "products"
	cartItemsCollection = "cartitems"
)

// MongoStore keeps products and cart items as documents
type MongoStore struct {
	client    *mongo.Client
	products  *mongo.Collection
	cartItems *mongo.Collection
}

// OpenMongoStore connects to uri and verifies the server is reachable
func OpenMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect: %w", err)
	}

	s := NewMongoStore(client, database)
	if err := s.Ping(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// NewMongoStore uses an already connected client
func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	db := client.Database(database)
	return &MongoStore{
		client:    client,
		products:  db.Collection(productsCollection),
		cartItems: db.Collection(cartItemsCollection),
	}
}

// GetAll runs find({}) and returns documents in natural order
func (s *MongoStore) GetAll(ctx context.Context) ([]models.Product, error) {
	cur, err := s.products.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("products.Find: %w", err)
	}

	var products []models.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("cursor.All: %w", err)
	}
	return products, nil
}

func (s *MongoStore) InsertProducts(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}

	maxID, err := s.maxProductID(ctx)
	if err != nil {
		return err
	}

	docs := make([]any, 0, len(products))
	for _, p := range products {
		if p.ProductID == 0 {
			maxID++
			p.ProductID = maxID
		}
		maxID = max(maxID, p.ProductID)
		docs = append(docs, p)
	}

	if _, err := s.products.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("products.InsertMany: %w", err)
	}
	return nil
}

func (s *MongoStore) maxProductID(ctx context.Context) (int64, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "ProductID", Value: -1}})

	var p models.Product
	err := s.products.FindOne(ctx, bson.D{}, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("products.FindOne: %w", err)
	}
	return p.ProductID, nil
}

func (s *MongoStore) AddItem(ctx context.Context, item models.CartItem) error {
	if _, err := s.cartItems.InsertOne(ctx, item); err != nil {
		return fmt.Errorf("cartitems.InsertOne: %w", err)
	}
	return nil
}

func (s *MongoStore) ListItems(ctx context.Context, shopCartID string) ([]models.CartItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "AddedAt", Value: 1}})

	cur, err := s.cartItems.Find(ctx, bson.D{{Key: "ShopCartID", Value: shopCartID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("cartitems.Find: %w", err)
	}

	var items []models.CartItem
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("cursor.All: %w", err)
	}
	return items, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo is unavailable: %w", err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
