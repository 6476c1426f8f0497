package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/kiosk-complaint-api/internal/models"
)

func newComplaintMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestComplaintRepositoryCreateAssignsIDAndTimestamp(t *testing.T) {
	db, mock, cleanup := newComplaintMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	mock.ExpectExec("INSERT INTO complaints").
		WithArgs(sqlmock.AnyArg(), "김민수", "+821012345678", "조명 고장", "시설 관련", "체육관 조명이 꺼졌습니다", "미처리", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	complaint := &models.Complaint{
		SubmitterName:    "김민수",
		SubmitterContact: "+821012345678",
		Title:            "조명 고장",
		Category:         models.CategoryFacility,
		Body:             "체육관 조명이 꺼졌습니다",
		Status:           models.StatusUnprocessed,
	}
	require.NoError(t, repo.Create(context.Background(), complaint))
	assert.NotEmpty(t, complaint.ID)
	assert.False(t, complaint.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintRepositoryListOrdersByTimestamp(t *testing.T) {
	db, mock, cleanup := newComplaintMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "name", "phone", "title", "type", "content", "status", "reply", "timestamp"}).
		AddRow("2", "이영희", "+821000000002", "복도 조명", "시설 관련", "깜빡입니다", "진행중", "확인 중입니다", now).
		AddRow("1", "김민수", "+821000000001", "주차장", "불편/건의사항", "좁습니다", "미처리", nil, now.Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, phone, title, type, content, status, reply, timestamp FROM complaints ORDER BY timestamp DESC")).
		WillReturnRows(rows)

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2", list[0].ID)
	assert.Equal(t, "확인 중입니다", list[0].ReplyText())
	assert.Nil(t, list[1].Reply)
	assert.Equal(t, models.CategoryGrievance, list[1].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintRepositoryListWrapsErrors(t *testing.T) {
	db, mock, cleanup := newComplaintMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	mock.ExpectQuery("SELECT .* FROM complaints").WillReturnError(errors.New("connection refused"))

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list complaints")
}

func TestComplaintRepositoryUpdateStatusOnly(t *testing.T) {
	db, mock, cleanup := newComplaintMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	status := models.StatusInProgress
	mock.ExpectExec(regexp.QuoteMeta("UPDATE complaints SET status = $1 WHERE id = $2")).
		WithArgs("진행중", "c-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), "c-1", models.ComplaintUpdate{Status: &status}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintRepositoryUpdateReplyUnknownID(t *testing.T) {
	db, mock, cleanup := newComplaintMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	reply := "처리했습니다"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE complaints SET reply = $1 WHERE id = $2")).
		WithArgs(reply, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), "missing", models.ComplaintUpdate{Reply: &reply})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestComplaintRepositoryUpdateNothingSkipsQuery(t *testing.T) {
	db, mock, cleanup := newComplaintMock(t)
	defer cleanup()
	repo := NewComplaintRepository(db)

	require.NoError(t, repo.Update(context.Background(), "c-1", models.ComplaintUpdate{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newComplaintMock(t)
	defer cleanup()
	repo := NewAuditRepository(db)

	mock.ExpectExec("INSERT INTO complaint_audit_logs").
		WithArgs(sqlmock.AnyArg(), "sess-1", models.AuditActionStatusChange, "c-1", `{"status":"완료"}`, "127.0.0.1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	id := "c-1"
	values := `{"status":"완료"}`
	entry := &models.AuditLog{SessionID: "sess-1", Action: models.AuditActionStatusChange, ComplaintID: &id, NewValues: &values, IPAddress: "127.0.0.1"}
	require.NoError(t, repo.CreateAuditLog(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
