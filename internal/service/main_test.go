package service

import (
	"ShareVault/config"
	"ShareVault/internal/repo"
	"ShareVault/model"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

// TestMain sets up the test database.
func TestMain(m *testing.M) {
	config.InitConfig()
	repo.InitMysqlTest()
	cleanTables()
	os.Exit(m.Run())
}

func cleanTables() {
	repo.Db.Exec("SET FOREIGN_KEY_CHECKS = 0")
	for _, table := range []string{"share_access_log", "share_links", "files", "users"} {
		repo.Db.Exec("DELETE FROM " + table)
	}
	repo.Db.Exec("SET FOREIGN_KEY_CHECKS = 1")
}

var seedSeq atomic.Uint64

// seedUserAndFile creates an owner and one stored file row.
func seedUserAndFile(t *testing.T) (*model.User, *model.File) {
	t.Helper()
	n := seedSeq.Add(1)
	user := model.User{
		UserName: fmt.Sprintf("svc_user_%d_%d", n, time.Now().UnixNano()),
		Password: "x",
		Email:    fmt.Sprintf("svc_%d_%d@test.local", n, time.Now().UnixNano()),
	}
	if err := repo.Db.Create(&user).Error; err != nil {
		t.Fatal(err)
	}
	file := model.File{
		OwnerID:     user.ID,
		Filename:    "test.txt",
		ContentType: "text/plain",
		Size:        42,
		BucketName:  config.AppConfig.BucketNameTest,
		ObjectName:  fmt.Sprintf("%d/test-%d.txt", user.ID, n),
	}
	if err := repo.Db.Create(&file).Error; err != nil {
		t.Fatal(err)
	}
	return &user, &file
}
