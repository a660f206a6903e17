package dao

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/carecompanion/carecompanion-api/internal/database"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*database.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return database.New(sqlx.NewDb(sqlDB, "mysql"), logger), mock
}

var escalationRowColumns = []string{
	"ESCALATION_ID", "USER_ID", "CONVERSATION_ID", "MESSAGE_CONTENT", "MOOD_DETECTED",
	"RISK_SCORE", "STATUS", "USER_CONSENT_GIVEN", "CREATED_TIME", "REVIEWED_TIME",
	"NOTIFICATION_SENT_TIME", "REVIEWED_BY",
}
