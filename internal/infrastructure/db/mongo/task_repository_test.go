package mongo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/taskmanager/task-api/internal/core/domain"
	"github.com/taskmanager/task-api/internal/core/ports"
)

func TestTaskRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	owner := primitive.NewObjectID()

	mt.Run("create requires an object id owner", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)

		_, err := repo.Create(ctx, &domain.Task{Description: "x", Owner: "bad"})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	mt.Run("create", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		task, err := repo.Create(ctx, &domain.Task{Description: "write tests", Owner: owner.Hex()})
		require.NoError(t, err)
		assert.Equal(t, owner.Hex(), task.Owner)
		assert.NotEmpty(t, task.ID)
	})

	mt.Run("list decodes documents", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)
		ns := mt.DB.Name() + "." + tasksCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "description", Value: "a"}, {Key: "completed", Value: true}, {Key: "owner", Value: owner}},
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "description", Value: "b"}, {Key: "completed", Value: true}, {Key: "owner", Value: owner}},
		))

		completed := true
		tasks, err := repo.List(ctx, ports.ListTasksFilter{Owner: owner.Hex(), Completed: &completed, Limit: 2})
		require.NoError(t, err)
		require.Len(t, tasks, 2)
		assert.Equal(t, "a", tasks[0].Description)
		assert.Equal(t, owner.Hex(), tasks[1].Owner)
	})

	mt.Run("list for malformed owner is empty", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)

		tasks, err := repo.List(ctx, ports.ListTasksFilter{Owner: "bad"})
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	mt.Run("find by id scoped to owner", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+"."+tasksCollection, mtest.FirstBatch))

		_, err := repo.FindByID(ctx, primitive.NewObjectID().Hex(), owner.Hex())
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	})

	mt.Run("malformed task id is not found", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)

		_, err := repo.Delete(ctx, "123", owner.Hex())
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	})

	mt.Run("delete returns removed task", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: id},
			{Key: "description", Value: "gone"},
			{Key: "owner", Value: owner},
		}}))

		task, err := repo.Delete(ctx, id.Hex(), owner.Hex())
		require.NoError(t, err)
		assert.Equal(t, "gone", task.Description)
	})

	mt.Run("delete by owner counts", func(mt *mtest.T) {
		repo := NewTaskRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}))

		n, err := repo.DeleteByOwner(ctx, owner.Hex())
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)
	})
}
