package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dynamodbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/playperu/grandjeu/internal/grandjeu"
)

// DynamoAPI is the part of the DynamoDB client the store uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// DynamoStore keeps one item per team, keyed by the opaque team ID, and one
// item per challenge in a second table. Every write overwrites the item.
type DynamoStore struct {
	client          DynamoAPI
	teamsTable      string
	challengesTable string
}

func NewDynamoStore(client DynamoAPI, teamsTable, challengesTable string) *DynamoStore {
	return &DynamoStore{client: client, teamsTable: teamsTable, challengesTable: challengesTable}
}

type progressItem struct {
	CodeEntered     bool `dynamodbav:"codeEntered"`
	AnswerSubmitted bool `dynamodbav:"answerSubmitted"`
	Completed       bool `dynamodbav:"completed"`
}

type teamItem struct {
	ID            string                  `dynamodbav:"id"`
	Name          string                  `dynamodbav:"name"`
	Email         string                  `dynamodbav:"email,omitempty"`
	PasswordHash  string                  `dynamodbav:"passwordHash"`
	CurrentTop    int                     `dynamodbav:"currentTop"`
	CompletedTops []int                   `dynamodbav:"completedTops"`
	Score         int                     `dynamodbav:"score"`
	Attempts      int                     `dynamodbav:"attempts"`
	Progress      map[string]progressItem `dynamodbav:"progress"`
	CreatedAt     time.Time               `dynamodbav:"createdAt"`
	LastActivity  time.Time               `dynamodbav:"lastActivity"`
}

func toTeamItem(t grandjeu.Team) teamItem {
	it := teamItem{
		ID:            t.ID,
		Name:          t.Name,
		Email:         t.Email,
		PasswordHash:  t.PasswordHash,
		CurrentTop:    t.CurrentTop,
		CompletedTops: t.CompletedTops,
		Score:         t.Score,
		Attempts:      t.Attempts,
		Progress:      make(map[string]progressItem, len(t.Progress)),
		CreatedAt:     t.CreatedAt,
		LastActivity:  t.LastActivity,
	}
	for id, p := range t.Progress {
		it.Progress[strconv.Itoa(id)] = progressItem(p)
	}
	return it
}

func (it teamItem) team() grandjeu.Team {
	t := grandjeu.Team{
		ID:            it.ID,
		Name:          it.Name,
		Email:         it.Email,
		PasswordHash:  it.PasswordHash,
		CurrentTop:    it.CurrentTop,
		CompletedTops: it.CompletedTops,
		Score:         it.Score,
		Attempts:      it.Attempts,
		Progress:      make(map[int]grandjeu.Progress, len(it.Progress)),
		CreatedAt:     it.CreatedAt,
		LastActivity:  it.LastActivity,
	}
	if t.CompletedTops == nil {
		t.CompletedTops = []int{}
	}
	for k, p := range it.Progress {
		id, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		t.Progress[id] = grandjeu.Progress(p)
	}
	return t
}

type challengeItem struct {
	ID          int    `dynamodbav:"id"`
	Title       string `dynamodbav:"title"`
	Description string `dynamodbav:"description"`
	Code        string `dynamodbav:"code"`
	Answer      string `dynamodbav:"answer,omitempty"`
	Points      int    `dynamodbav:"points"`
	Hint        string `dynamodbav:"hint,omitempty"`
	Theme       string `dynamodbav:"theme,omitempty"`
}

func teamKey(id string) map[string]dynamodbtypes.AttributeValue {
	return map[string]dynamodbtypes.AttributeValue{
		"id": &dynamodbtypes.AttributeValueMemberS{Value: id},
	}
}

func challengeKey(id int) map[string]dynamodbtypes.AttributeValue {
	return map[string]dynamodbtypes.AttributeValue{
		"id": &dynamodbtypes.AttributeValueMemberN{Value: strconv.Itoa(id)},
	}
}

func (s *DynamoStore) get(ctx context.Context, table string, key map[string]dynamodbtypes.AttributeValue, dest any) error {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(table),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("getting item from %s: %w", table, err)
	}
	if out.Item == nil {
		return grandjeu.ErrNotFound
	}
	if err := attributevalue.UnmarshalMap(out.Item, dest); err != nil {
		return fmt.Errorf("unmarshaling item from %s: %w", table, err)
	}
	return nil
}

func (s *DynamoStore) put(ctx context.Context, table string, v any) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshaling item for %s: %w", table, err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      item,
	})
	if err != nil {
		return grandjeu.PersistenceError("putting item to "+table, err)
	}
	return nil
}

func (s *DynamoStore) del(ctx context.Context, table string, key map[string]dynamodbtypes.AttributeValue) error {
	out, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(table),
		Key:          key,
		ReturnValues: dynamodbtypes.ReturnValueAllOld,
	})
	if err != nil {
		return grandjeu.PersistenceError("deleting item from "+table, err)
	}
	if len(out.Attributes) == 0 {
		return grandjeu.ErrNotFound
	}
	return nil
}

// scan pages through a whole table.
func scan[T any](ctx context.Context, client DynamoAPI, table string) ([]T, error) {
	var (
		out  []T
		last map[string]dynamodbtypes.AttributeValue
	)
	for {
		input := &dynamodb.ScanInput{
			TableName:      aws.String(table),
			ConsistentRead: aws.Bool(true),
		}
		if last != nil {
			input.ExclusiveStartKey = last
		}

		result, err := client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", table, err)
		}
		for _, item := range result.Items {
			var v T
			if err := attributevalue.UnmarshalMap(item, &v); err != nil {
				return nil, fmt.Errorf("unmarshaling item from %s: %w", table, err)
			}
			out = append(out, v)
		}

		last = result.LastEvaluatedKey
		if len(last) == 0 {
			return out, nil
		}
	}
}

func (s *DynamoStore) GetTeam(ctx context.Context, id string) (grandjeu.Team, error) {
	var it teamItem
	if err := s.get(ctx, s.teamsTable, teamKey(id), &it); err != nil {
		return grandjeu.Team{}, err
	}
	return it.team(), nil
}

func (s *DynamoStore) ListTeams(ctx context.Context) ([]grandjeu.Team, error) {
	items, err := scan[teamItem](ctx, s.client, s.teamsTable)
	if err != nil {
		return nil, err
	}
	teams := make([]grandjeu.Team, 0, len(items))
	for _, it := range items {
		teams = append(teams, it.team())
	}
	grandjeu.SortTeams(teams)
	return teams, nil
}

func (s *DynamoStore) PutTeam(ctx context.Context, t grandjeu.Team) error {
	return s.put(ctx, s.teamsTable, toTeamItem(t))
}

func (s *DynamoStore) DeleteTeam(ctx context.Context, id string) error {
	return s.del(ctx, s.teamsTable, teamKey(id))
}

func (s *DynamoStore) GetChallenge(ctx context.Context, id int) (grandjeu.Challenge, error) {
	var it challengeItem
	if err := s.get(ctx, s.challengesTable, challengeKey(id), &it); err != nil {
		return grandjeu.Challenge{}, err
	}
	return grandjeu.Challenge(it), nil
}

func (s *DynamoStore) ListChallenges(ctx context.Context) (grandjeu.Catalog, error) {
	items, err := scan[challengeItem](ctx, s.client, s.challengesTable)
	if err != nil {
		return nil, err
	}
	cs := make(grandjeu.Catalog, 0, len(items))
	for _, it := range items {
		cs = append(cs, grandjeu.Challenge(it))
	}
	sort.Slice(cs, func(i, j int) bool { return cs[i].ID < cs[j].ID })
	return cs, nil
}

func (s *DynamoStore) PutChallenge(ctx context.Context, c grandjeu.Challenge) error {
	return s.put(ctx, s.challengesTable, challengeItem(c))
}

// CreateChallenge puts the item on the condition that no item has its key.
func (s *DynamoStore) CreateChallenge(ctx context.Context, c grandjeu.Challenge) error {
	item, err := attributevalue.MarshalMap(challengeItem(c))
	if err != nil {
		return fmt.Errorf("marshaling item for %s: %w", s.challengesTable, err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.challengesTable),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	var conflict *dynamodbtypes.ConditionalCheckFailedException
	switch {
	case errors.As(err, &conflict):
		return grandjeu.ErrDuplicateChallenge
	case err != nil:
		return grandjeu.PersistenceError("creating challenge", err)
	}
	return nil
}

func (s *DynamoStore) DeleteChallenge(ctx context.Context, id int) error {
	return s.del(ctx, s.challengesTable, challengeKey(id))
}

// Ping checks that both tables exist and are reachable.
func (s *DynamoStore) Ping(ctx context.Context) error {
	for _, table := range []string{s.teamsTable, s.challengesTable} {
		if _, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(table),
		}); err != nil {
			return fmt.Errorf("describing %s: %w", table, err)
		}
	}
	return nil
}

var (
	_ grandjeu.Repository       = (*DynamoStore)(nil)
	_ grandjeu.ChallengeCreator = (*DynamoStore)(nil)
)
