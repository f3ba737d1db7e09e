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

	"github.com/kubrck/Promptly/internal/core/domain"
)

// ChatRepository implements ports.ChatRepository. Every query is filtered by
// owner, so a foreign chat is indistinguishable from a missing one.
type ChatRepository struct {
	coll *mongo.Collection
}

func NewChatRepository(db *mongo.Database) *ChatRepository {
	return &ChatRepository{coll: db.Collection(chatsCollection)}
}

type chatDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id"`
	Title     string             `bson:"title"`
	Messages  []domain.Message   `bson:"messages,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

func (d chatDoc) toDomain() *domain.Chat {
	msgs := make([]domain.Message, len(d.Messages))
	for i, m := range d.Messages {
		m.Timestamp = m.Timestamp.UTC()
		msgs[i] = m
	}
	return &domain.Chat{
		ID:        d.ID.Hex(),
		UserID:    d.UserID.Hex(),
		Title:     d.Title,
		Messages:  msgs,
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

// EnsureIndexes creates the owner listing index.
func (r *ChatRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "updated_at", Value: -1}},
		Options: options.Index().SetName("user_recent"),
	})
	if err != nil {
		return fmt.Errorf("chats index: %w", err)
	}
	return nil
}

func (r *ChatRepository) Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, error) {
	owner, err := primitive.ObjectIDFromHex(chat.UserID)
	if err != nil {
		return nil, fmt.Errorf("insert chat: invalid owner id %q", chat.UserID)
	}

	doc := chatDoc{
		ID:        primitive.NewObjectID(),
		UserID:    owner,
		Title:     chat.Title,
		Messages:  chat.Messages,
		CreatedAt: chat.CreatedAt,
		UpdatedAt: chat.UpdatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert chat: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *ChatRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.ChatSummary, error) {
	summaries := []domain.ChatSummary{}
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return summaries, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetProjection(bson.M{"messages": 0})

	cursor, err := r.coll.Find(ctx, bson.M{"user_id": owner}, opts)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var d chatDoc
		if err := cursor.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode chat: %w", err)
		}
		summaries = append(summaries, domain.ChatSummary{
			ID:        d.ID.Hex(),
			Title:     d.Title,
			CreatedAt: d.CreatedAt.UTC(),
			UpdatedAt: d.UpdatedAt.UTC(),
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return summaries, nil
}

func (r *ChatRepository) FindByID(ctx context.Context, ownerID, chatID string) (*domain.Chat, error) {
	filter, ok := ownedFilter(ownerID, chatID)
	if !ok {
		return nil, domain.ErrChatNotFound
	}

	var d chatDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrChatNotFound
		}
		return nil, fmt.Errorf("find chat: %w", err)
	}
	return d.toDomain(), nil
}

func (r *ChatRepository) Delete(ctx context.Context, ownerID, chatID string) error {
	filter, ok := ownedFilter(ownerID, chatID)
	if !ok {
		return domain.ErrChatNotFound
	}

	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrChatNotFound
	}
	return nil
}

// AppendMessages pushes msgs onto the chat and sets updated_at in a single
// update, so concurrent exchanges on the same chat never overwrite each other.
func (r *ChatRepository) AppendMessages(ctx context.Context, ownerID, chatID string, msgs []domain.Message, updatedAt time.Time) error {
	filter, ok := ownedFilter(ownerID, chatID)
	if !ok {
		return domain.ErrChatNotFound
	}

	update := bson.M{
		"$push": bson.M{"messages": bson.M{"$each": msgs}},
		"$set":  bson.M{"updated_at": updatedAt.UTC()},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("append messages: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrChatNotFound
	}
	return nil
}

// ownedFilter matches a chat by id and owner. Malformed ids match nothing.
func ownedFilter(ownerID, chatID string) (bson.M, bool) {
	oid, err := primitive.ObjectIDFromHex(chatID)
	if err != nil {
		return nil, false
	}
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, false
	}
	return bson.M{"_id": oid, "user_id": owner}, true
}
