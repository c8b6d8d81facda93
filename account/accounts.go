package account

import (
	"crypto/sha256"
	"encoding/hex"
	"os"

	"cowork/idgen"
	"cowork/persistence"
	"cowork/session"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
	"github.com/sony/sonyflake"
)

var (
	userIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateUserFunc = CreateUser
	QueryUsersFunc = QueryUsers
)

func HashSha256(raw string) string {
	h := sha256.New()
	h.Write([]byte(raw))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}

func CreateUser(c *UserCreation) (*UserInfo, error) {
	user := User{ID: idgen.NextID(userIdWorker), Name: c.Name, Nickname: c.Nickname, Secret: HashSha256(c.Secret)}
	if err := persistence.ActiveDataSourceManager.GormDB().Create(&user).Error; err != nil {
		return nil, err
	}
	return &UserInfo{ID: user.ID, Name: user.Name, Nickname: user.Nickname}, nil
}

func QueryUsers(sec *session.Session) (*[]UserInfo, error) {
	var users []UserInfo
	if err := persistence.ActiveDataSourceManager.GormDB().Model(&User{}).Scan(&users).Error; err != nil {
		return nil, err
	}
	return &users, nil
}

func QueryAccountNames(ids []types.ID) (map[types.ID]string, error) {
	if len(ids) == 0 {
		return map[types.ID]string{}, nil
	}
	db := persistence.ActiveDataSourceManager.GormDB()
	var records []User
	if err := db.Model(&User{}).Where("id IN (?)", ids).Find(&records).Error; err != nil {
		return nil, err
	}
	result := map[types.ID]string{}
	for _, r := range records {
		result[r.ID] = r.DisplayName()
	}
	return result, nil
}

// BootstrapRootUser ensure an initial login exists on an empty database
func BootstrapRootUser() {
	db := persistence.ActiveDataSourceManager.GormDB()
	var count int
	if err := db.Model(&User{}).Count(&count).Error; err != nil {
		logrus.Warnf("failed to count users: %v", err)
		return
	}
	if count > 0 {
		return
	}

	secret := os.Getenv("ROOT_SECRET")
	if secret == "" {
		secret = "root123"
	}
	user := User{ID: idgen.NextID(userIdWorker), Name: "root", Nickname: "Root", Secret: HashSha256(secret)}
	if err := db.Create(&user).Error; err != nil {
		logrus.Warnf("failed to create root user: %v", err)
		return
	}
	logrus.Info("root user created")
}
