package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/gofrs/uuid/v5"

	"github.com/zlnvch/tracereport/checkins"
	"github.com/zlnvch/tracereport/models"
)

type DynamoCheckInStore struct {
	client    *dynamodb.Client
	tableName string
}

func NewDynamoCheckInStore(ctx context.Context, devMode bool, dynamodbEndpoint string, tableName string) (*DynamoCheckInStore, error) {
	client, err := newDynamoDBClient(context.Background(), devMode, dynamodbEndpoint)
	if err != nil {
		return nil, err
	}

	tables, err := getTables(client, ctx)
	if err != nil {
		return nil, err
	}

	foundTable := false
	for _, table := range tables {
		if table == tableName {
			foundTable = true
			break
		}
	}
	if !foundTable {
		return nil, fmt.Errorf("given table name '%s' not found in dynamodb", tableName)
	}

	return &DynamoCheckInStore{client: client, tableName: tableName}, nil
}

func (dynamoStore *DynamoCheckInStore) SaveCheckIn(ctx context.Context, checkIn models.CheckIn) (models.CheckIn, error) {
	if checkIn.Id.IsNil() {
		checkInId, err := uuid.NewV4()
		if err != nil {
			return models.CheckIn{}, err
		}
		checkIn.Id = checkInId
	}
	if checkIn.Arrival.IsZero() {
		checkIn.Arrival = time.Now()
	}

	avMap, err := attributevalue.MarshalMap(checkInToDynamo(checkIn))
	if err != nil {
		return models.CheckIn{}, fmt.Errorf("marshal error: %w", err)
	}

	_, err = dynamoStore.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(dynamoStore.tableName),
		Item:      avMap,
	})
	if err != nil {
		return models.CheckIn{}, fmt.Errorf("PutItem failed: %w", err)
	}

	return checkIn, nil
}

func (dynamoStore *DynamoCheckInStore) CheckOut(ctx context.Context, checkInId string) error {
	_, err := dynamoStore.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(dynamoStore.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: checkInPK},
			"SK": &types.AttributeValueMemberS{Value: checkInId},
		},
		UpdateExpression:    aws.String("SET DepartureMs = :departure"),
		ConditionExpression: aws.String("attribute_exists(PK) AND DepartureMs = :zero"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":departure": &types.AttributeValueMemberN{Value: fmt.Sprint(time.Now().UnixMilli())},
			":zero":      &types.AttributeValueMemberN{Value: "0"},
		},
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if ok := asConditionFailed(err, &cce); ok {
			return checkins.ErrAlreadyCheckedOut
		}
		return fmt.Errorf("UpdateItem failed: %w", err)
	}

	return nil
}

func (dynamoStore *DynamoCheckInStore) GetCompletedCheckIns(ctx context.Context) ([]models.CheckIn, error) {
	dynamoCheckIns, err := queryAllByPK[dynamoCheckIn](dynamoStore, ctx, checkInPK, true, 0)
	if err != nil {
		return nil, err
	}

	completed := make([]models.CheckIn, 0, len(dynamoCheckIns))
	for _, dc := range dynamoCheckIns {
		checkIn, err := checkInFromDynamo(dc)
		if err != nil {
			return nil, err
		}
		if checkIn.CheckedOut() {
			completed = append(completed, checkIn)
		}
	}

	return completed, nil
}
