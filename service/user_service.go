package service

import (
	"errors"
	"fmt"
	"log"

	"userhub/internal/captcha"
	"userhub/internal/mail"
	"userhub/model"
	"userhub/utils"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrCaptchaExpired  = errors.New("captcha expired")
	ErrCaptchaMismatch = errors.New("captcha mismatch")
	ErrUserExists      = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrBadPassword     = errors.New("bad password")
)

// UserRepository is the persistence contract the service depends on.
// Lookups report "absent" as (nil, nil); the *AndAdmin lookups eager-load
// roles and each role's permissions.
type UserRepository interface {
	CreateUser(user *model.User) error
	FindByUsername(username string) (*model.User, error)
	FindByUsernameAndAdmin(username string, isAdmin bool) (*model.User, error)
	FindByIDAndAdmin(id uint64, isAdmin bool) (*model.User, error)
	SavePermissions(permissions []*model.Permission) error
	SaveRoles(roles []*model.Role) error
	SaveUsers(users []*model.User) error
}

// UserInfo 登录/查询返回的用户视图
type UserInfo struct {
	ID          uint64   `json:"id"`
	Username    string   `json:"username"`
	NickName    string   `json:"nickName"`
	Email       string   `json:"email"`
	PhoneNumber string   `json:"phoneNumber"`
	HeadPic     string   `json:"headPic"`
	CreateTime  int64    `json:"createTime"` // 毫秒时间戳
	IsFrozen    bool     `json:"isFrozen"`
	IsAdmin     bool     `json:"isAdmin"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// LoginUserVo 登录响应：用户视图 + 两个 token（由 API 层填充）
type LoginUserVo struct {
	UserInfo     UserInfo `json:"userInfo"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
}

// UserView is the narrower projection used by the refresh flow.
type UserView struct {
	ID          uint64   `json:"id"`
	Username    string   `json:"username"`
	IsAdmin     bool     `json:"isAdmin"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

// UserService bundles the repository, the captcha store and the mail sender.
type UserService struct {
	repo    UserRepository
	captcha *captcha.Store
	mailer  mail.Sender
}

// NewUserService 创建一个新的 UserService 实例
func NewUserService(repo UserRepository, store *captcha.Store, mailer mail.Sender) *UserService {
	return &UserService{repo: repo, captcha: store, mailer: mailer}
}

// RegisterInput carries the fields needed to create an account.
type RegisterInput struct {
	Username string
	Password string
	NickName string
	Email    string
	Captcha  string
}

// Register validates the captcha and creates the user. Validation failures
// come back as typed errors; a persistence failure is logged and reported
// through the returned message only, never as an error.
func (s *UserService) Register(in RegisterInput) (string, error) {
	code, err := s.captcha.Get(in.Email)
	if err != nil {
		return "", err
	}
	if code == "" {
		return "", ErrCaptchaExpired
	}
	if in.Captcha != code {
		return "", ErrCaptchaMismatch
	}

	found, err := s.repo.FindByUsername(in.Username)
	if err != nil {
		return "", err
	}
	if found != nil {
		return "", ErrUserExists
	}

	newUser := &model.User{
		Username: in.Username,
		Password: utils.MD5(in.Password),
		Email:    in.Email,
		NickName: in.NickName,
	}
	if err := s.repo.CreateUser(newUser); err != nil {
		// 存储失败只记日志，对外只返回失败提示。
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			log.Printf("register: duplicate username race for %q: %v", in.Username, err)
		} else {
			log.Printf("register: create user %q failed: %v", in.Username, err)
		}
		return "注册失败", nil
	}
	return "注册成功", nil
}

// Login verifies credentials inside the admin/non-admin partition and builds
// the login view. Token minting is the caller's job.
func (s *UserService) Login(username, password string, isAdmin bool) (*LoginUserVo, error) {
	user, err := s.repo.FindByUsernameAndAdmin(username, isAdmin)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Password != utils.MD5(password) {
		return nil, ErrBadPassword
	}

	vo := &LoginUserVo{
		UserInfo: UserInfo{
			ID:          user.ID,
			Username:    user.Username,
			NickName:    user.NickName,
			Email:       user.Email,
			PhoneNumber: user.PhoneNumber,
			HeadPic:     user.HeadPic,
			CreateTime:  user.CreateTime.UnixMilli(),
			IsFrozen:    user.IsFrozen,
			IsAdmin:     user.IsAdmin,
			Roles:       roleNames(user.Roles),
			Permissions: aggregatePermissions(user.Roles),
		},
	}
	return vo, nil
}

// FindUserByID resolves the identity + authorization projection used when
// refreshing tokens.
func (s *UserService) FindUserByID(id uint64, isAdmin bool) (*UserView, error) {
	user, err := s.repo.FindByIDAndAdmin(id, isAdmin)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return &UserView{
		ID:          user.ID,
		Username:    user.Username,
		IsAdmin:     user.IsAdmin,
		Roles:       roleNames(user.Roles),
		Permissions: aggregatePermissions(user.Roles),
	}, nil
}

// IssueCaptcha generates a 6-digit code, stores it for the address and
// mails it out.
func (s *UserService) IssueCaptcha(address string) (string, error) {
	code, err := captcha.GenerateCode()
	if err != nil {
		return "", err
	}
	if err := s.captcha.Set(address, code); err != nil {
		return "", err
	}
	html := fmt.Sprintf("<p>你的注册验证码是 %s</p>", code)
	if err := s.mailer.Send(address, "注册验证码", html); err != nil {
		return "", err
	}
	return "发送成功", nil
}

// InitData seeds two users, two roles and two permissions. NOT idempotent:
// running it twice inserts duplicate rows. Development use only.
func (s *UserService) InitData() error {
	permission1 := &model.Permission{Code: "ccc", Description: "访问 ccc 接口"}
	permission2 := &model.Permission{Code: "ddd", Description: "访问 ddd 接口"}

	role1 := &model.Role{Name: "管理员"}
	role2 := &model.Role{Name: "普通用户"}

	user1 := &model.User{
		Username:    "zhangsan",
		Password:    utils.MD5("111111"),
		Email:       "xxx@xx.com",
		IsAdmin:     true,
		NickName:    "张三",
		PhoneNumber: "13233323333",
	}
	user2 := &model.User{
		Username: "lisi",
		Password: utils.MD5("222222"),
		Email:    "yy@yy.com",
		NickName: "李四",
	}

	if err := s.repo.SavePermissions([]*model.Permission{permission1, permission2}); err != nil {
		return err
	}

	role1.Permissions = []model.Permission{*permission1, *permission2}
	role2.Permissions = []model.Permission{*permission1}
	if err := s.repo.SaveRoles([]*model.Role{role1, role2}); err != nil {
		return err
	}

	user1.Roles = []model.Role{*role1}
	user2.Roles = []model.Role{*role2}
	return s.repo.SaveUsers([]*model.User{user1, user2})
}

func roleNames(roles []model.Role) []string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	return names
}

// aggregatePermissions flattens role permissions into a deduplicated code
// list, keeping first-occurrence order across the roles.
func aggregatePermissions(roles []model.Role) []string {
	codes := make([]string, 0)
	seen := make(map[string]struct{})
	for _, role := range roles {
		for _, p := range role.Permissions {
			if _, ok := seen[p.Code]; ok {
				continue
			}
			seen[p.Code] = struct{}{}
			codes = append(codes, p.Code)
		}
	}
	return codes
}
