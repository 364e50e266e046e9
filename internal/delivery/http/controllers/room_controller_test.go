package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roombook/internal/delivery/http/helpers"
	"roombook/internal/domain"
)

const testSpaceID = "3c2b1a09-8f7e-4d6c-b5a4-938271605f4e"

type fakeRoomService struct {
	rooms    []*domain.Room
	room     *domain.Room
	err      error
	created  *domain.Room
	gotPatch domain.RoomPatch
}

func (f *fakeRoomService) Create(ctx context.Context, userID string, room *domain.Room) error {
	if f.err != nil {
		return f.err
	}
	room.ID = testRoomID
	f.created = room
	return nil
}

func (f *fakeRoomService) List(ctx context.Context, userID string) ([]*domain.Room, error) {
	return f.rooms, f.err
}

func (f *fakeRoomService) Get(ctx context.Context, id, userID string) (*domain.Room, error) {
	return f.room, f.err
}

func (f *fakeRoomService) Update(ctx context.Context, id, userID string, patch domain.RoomPatch) (*domain.Room, error) {
	f.gotPatch = patch
	return f.room, f.err
}

func (f *fakeRoomService) Delete(ctx context.Context, id, userID string) error {
	return f.err
}

func TestRoomController_List(t *testing.T) {
	t.Run("empty list encodes as array", func(t *testing.T) {
		ctrl := NewRoomController(testLogger, &fakeRoomService{})
		rr := httptest.NewRecorder()
		ctrl.List(rr, authed(httptest.NewRequest(http.MethodGet, "http://test/rooms", nil)))

		require.Equal(t, http.StatusOK, rr.Code)
		var rooms []*domain.Room
		decodeEnvelope(t, rr, &rooms)
		assert.NotNil(t, rooms)
		assert.Empty(t, rooms)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		ctrl := NewRoomController(testLogger, &fakeRoomService{})
		rr := httptest.NewRecorder()
		ctrl.List(rr, httptest.NewRequest(http.MethodGet, "http://test/rooms", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestRoomController_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "success", body: `{"space_id":"` + testSpaceID + `","name":"Board room","capacity":8}`, wantStatus: http.StatusCreated},
		{name: "missing name", body: `{"space_id":"` + testSpaceID + `"}`, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
		{name: "bad space id", body: `{"space_id":"abc","name":"x"}`, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
		{name: "negative capacity", body: `{"space_id":"` + testSpaceID + `","name":"x","capacity":-1}`, wantStatus: http.StatusBadRequest, wantCode: helpers.ErrCodeBadRequest},
		{name: "not admin", body: `{"space_id":"` + testSpaceID + `","name":"x"}`, err: domain.ErrForbidden, wantStatus: http.StatusForbidden, wantCode: helpers.ErrCodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRoomService{err: tt.err}
			ctrl := NewRoomController(testLogger, fake)
			rr := httptest.NewRecorder()
			ctrl.Create(rr, authed(httptest.NewRequest(http.MethodPost, "http://test/rooms", bytes.NewBufferString(tt.body))))

			require.Equal(t, tt.wantStatus, rr.Code)
			var room domain.Room
			envelope := decodeEnvelope(t, rr, &room)
			if tt.wantCode == "" {
				require.Nil(t, envelope.Error)
				assert.Equal(t, testRoomID, room.ID)
				assert.Equal(t, testSpaceID, room.SpaceID)
				assert.Equal(t, 8, room.Capacity)
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantCode, envelope.Error.Code)
		})
	}
}

func TestRoomController_Update(t *testing.T) {
	fake := &fakeRoomService{room: &domain.Room{ID: testRoomID, Name: "Renamed"}}
	ctrl := NewRoomController(testLogger, fake)
	req := authed(httptest.NewRequest(http.MethodPut, "http://test/rooms/"+testRoomID, bytes.NewBufferString(`{"name":"Renamed","capacity":0}`)))
	req.SetPathValue("roomID", testRoomID)
	rr := httptest.NewRecorder()
	ctrl.Update(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, fake.gotPatch.Name)
	assert.Equal(t, "Renamed", *fake.gotPatch.Name)
	require.NotNil(t, fake.gotPatch.Capacity)
	assert.Equal(t, 0, *fake.gotPatch.Capacity)
	assert.Nil(t, fake.gotPatch.SpaceID)
	assert.Nil(t, fake.gotPatch.Description)
}

func TestRoomController_Get_and_Delete_errors(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		err        error
		wantStatus int
	}{
		{name: "invalid id", id: "room-1", wantStatus: http.StatusBadRequest},
		{name: "not visible", id: testRoomID, err: domain.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "not admin", id: testRoomID, err: domain.ErrForbidden, wantStatus: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewRoomController(testLogger, &fakeRoomService{err: tt.err})

			req := authed(httptest.NewRequest(http.MethodDelete, "http://test/rooms/"+tt.id, nil))
			req.SetPathValue("roomID", tt.id)
			rr := httptest.NewRecorder()
			ctrl.Delete(rr, req)
			assert.Equal(t, tt.wantStatus, rr.Code)

			req = authed(httptest.NewRequest(http.MethodGet, "http://test/rooms/"+tt.id, nil))
			req.SetPathValue("roomID", tt.id)
			rr = httptest.NewRecorder()
			ctrl.Get(rr, req)
			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestRoomController_Delete(t *testing.T) {
	ctrl := NewRoomController(testLogger, &fakeRoomService{})
	req := authed(httptest.NewRequest(http.MethodDelete, "http://test/rooms/"+testRoomID, nil))
	req.SetPathValue("roomID", testRoomID)
	rr := httptest.NewRecorder()
	ctrl.Delete(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var body DeleteResponse
	decodeEnvelope(t, rr, &body)
	assert.Equal(t, "deleted", body.Status)
}
