package service

import (
	"context"
	"testing"

	"activity-ticketing/internal/model"
	apperrors "activity-ticketing/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newActivityServiceForTest() (ActivityService, *MockActivityRepository, *MockTicketTypeRepository, *MockInventoryGate) {
	activities := &MockActivityRepository{}
	ticketTypes := &MockTicketTypeRepository{}
	gate := &MockInventoryGate{}
	return NewActivityService(activities, ticketTypes, gate), activities, ticketTypes, gate
}

func TestActivityService_OpenForSale(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, activities, ticketTypes, gate := newActivityServiceForTest()

		activities.On("FindByID", mock.Anything, 1).Return(publishedActivity(), nil).Once()
		ticketTypes.On("ListByActivityID", mock.Anything, 1).Return(sampleTicketTypes(), nil).Once()

		// 每個票種都以剩餘量預熱閘門
		gate.On("WarmUp", mock.Anything, 10, 10).Return(nil).Once()
		gate.On("WarmUp", mock.Anything, 11, 5).Return(nil).Once()

		err := svc.OpenForSale(ctx, 1)

		require.NoError(t, err)
		gate.AssertExpectations(t)
	})

	t.Run("Failed - ErrActivityNotFound", func(t *testing.T) {
		svc, activities, _, gate := newActivityServiceForTest()

		activities.On("FindByID", mock.Anything, 99).Return(nil, apperrors.ErrActivityNotFound).Once()

		err := svc.OpenForSale(ctx, 99)

		assert.ErrorIs(t, err, apperrors.ErrActivityNotFound)
		gate.AssertNotCalled(t, "WarmUp", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestActivityService_ListTicketTypes(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, activities, ticketTypes, _ := newActivityServiceForTest()

		activities.On("FindByID", mock.Anything, 1).Return(publishedActivity(), nil).Once()
		ticketTypes.On("ListByActivityID", mock.Anything, 1).Return(sampleTicketTypes(), nil).Once()

		got, err := svc.ListTicketTypes(ctx, 1)

		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("Failed - unknown activity", func(t *testing.T) {
		svc, activities, ticketTypes, _ := newActivityServiceForTest()

		activities.On("FindByID", mock.Anything, 99).Return(nil, apperrors.ErrActivityNotFound).Once()

		_, err := svc.ListTicketTypes(ctx, 99)

		assert.ErrorIs(t, err, apperrors.ErrActivityNotFound)
		ticketTypes.AssertNotCalled(t, "ListByActivityID", mock.Anything, mock.Anything)
	})
}

func TestActivityService_List(t *testing.T) {
	ctx := context.Background()
	svc, activities, _, _ := newActivityServiceForTest()

	activities.On("List", mock.Anything).Return([]*model.Activity{publishedActivity()}, nil).Once()

	got, err := svc.List(ctx)

	require.NoError(t, err)
	assert.Len(t, got, 1)
}
