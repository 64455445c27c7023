package service

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userhub/config"
	"userhub/internal/captcha"
	"userhub/internal/mail"
	"userhub/internal/test"
	"userhub/model"
	"userhub/utils"
)

var (
	_ UserRepository = (*test.MemoryUserRepo)(nil)
	_ mail.Sender    = (*test.RecordingMailer)(nil)
)

var codeRe = regexp.MustCompile(`\d{6}`)

type fixture struct {
	svc    *UserService
	repo   *test.MemoryUserRepo
	mailer *test.RecordingMailer
	mr     *miniredis.Miniredis
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	config.GlobalConfig = &config.Config{
		JWT: config.JWTConfig{
			Secret:        "test-secret",
			AccessExpire:  1800,
			RefreshExpire: 604800,
		},
	}

	repo := test.NewMemoryUserRepo()
	mailer := &test.RecordingMailer{}
	return &fixture{
		svc:    NewUserService(repo, captcha.NewStore(rdb), mailer),
		repo:   repo,
		mailer: mailer,
		mr:     mr,
	}
}

// issue requests a captcha for the address and extracts the mailed code.
func (f *fixture) issue(t *testing.T, address string) string {
	t.Helper()
	msg, err := f.svc.IssueCaptcha(address)
	require.NoError(t, err)
	require.Equal(t, "发送成功", msg)
	last := f.mailer.LastMail()
	require.NotNil(t, last)
	require.Equal(t, address, last.To)
	code := codeRe.FindString(last.HTML)
	require.Len(t, code, 6)
	return code
}

func TestIssueCaptchaStoresCodeWithTTL(t *testing.T) {
	f := newFixture(t)
	code := f.issue(t, "a@b.com")

	stored, err := f.mr.Get("captcha_a@b.com")
	require.NoError(t, err)
	assert.Equal(t, code, stored)
	assert.Equal(t, 300*time.Second, f.mr.TTL("captcha_a@b.com"))
}

func TestRegisterSucceedsOnceThenConflicts(t *testing.T) {
	f := newFixture(t)
	code := f.issue(t, "a@b.com")

	msg, err := f.svc.Register(RegisterInput{
		Username: "alice", Password: "secret1", NickName: "Alice",
		Email: "a@b.com", Captcha: code,
	})
	require.NoError(t, err)
	assert.Equal(t, "注册成功", msg)

	// Captcha is still live; the username now collides.
	_, err = f.svc.Register(RegisterInput{
		Username: "alice", Password: "secret1", NickName: "Alice",
		Email: "a@b.com", Captcha: code,
	})
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestRegisterCaptchaExpired(t *testing.T) {
	f := newFixture(t)
	code := f.issue(t, "a@b.com")

	f.mr.FastForward(301 * time.Second)

	_, err := f.svc.Register(RegisterInput{
		Username: "alice", Password: "secret1", NickName: "Alice",
		Email: "a@b.com", Captcha: code,
	})
	assert.ErrorIs(t, err, ErrCaptchaExpired)
}

func TestRegisterCaptchaMismatch(t *testing.T) {
	f := newFixture(t)
	code := f.issue(t, "a@b.com")

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	_, err := f.svc.Register(RegisterInput{
		Username: "alice", Password: "secret1", NickName: "Alice",
		Email: "a@b.com", Captcha: wrong,
	})
	assert.ErrorIs(t, err, ErrCaptchaMismatch)
}

func TestRegisterWithLeadingZeroCaptcha(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.mr.Set("captcha_a@b.com", "012345"))

	msg, err := f.svc.Register(RegisterInput{
		Username: "alice", Password: "secret1", NickName: "Alice",
		Email: "a@b.com", Captcha: "012345",
	})
	require.NoError(t, err)
	assert.Equal(t, "注册成功", msg)
}

func TestRegisterPersistenceFailureIsSwallowed(t *testing.T) {
	f := newFixture(t)
	code := f.issue(t, "a@b.com")

	f.repo.CreateErr = errors.New("connection reset")
	msg, err := f.svc.Register(RegisterInput{
		Username: "alice", Password: "secret1", NickName: "Alice",
		Email: "a@b.com", Captcha: code,
	})
	require.NoError(t, err)
	assert.Equal(t, "注册失败", msg)
}

func TestLoginUnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Login("ghost", "whatever", false)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLoginWrongPasswordIsValidationNotLookup(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.InitData())

	_, err := f.svc.Login("zhangsan", "wrong", true)
	assert.ErrorIs(t, err, ErrBadPassword)
	assert.NotErrorIs(t, err, ErrUserNotFound)
}

func TestLoginPartitionMismatch(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.InitData())

	// zhangsan is an admin; the non-admin partition must not find him.
	_, err := f.svc.Login("zhangsan", "111111", false)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLoginAfterInitData(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.InitData())

	vo, err := f.svc.Login("zhangsan", "111111", true)
	require.NoError(t, err)
	assert.Equal(t, "zhangsan", vo.UserInfo.Username)
	assert.Equal(t, "张三", vo.UserInfo.NickName)
	assert.True(t, vo.UserInfo.IsAdmin)
	assert.Equal(t, []string{"管理员"}, vo.UserInfo.Roles)
	assert.Equal(t, []string{"ccc", "ddd"}, vo.UserInfo.Permissions)
	// Tokens are the API layer's job.
	assert.Empty(t, vo.AccessToken)
	assert.Empty(t, vo.RefreshToken)

	vo, err = f.svc.Login("lisi", "222222", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"普通用户"}, vo.UserInfo.Roles)
	assert.Equal(t, []string{"ccc"}, vo.UserInfo.Permissions)
}

func TestLoginDeduplicatesPermissionsAcrossRoles(t *testing.T) {
	f := newFixture(t)

	read := model.Permission{ID: 1, Code: "read", Description: "read"}
	write := model.Permission{ID: 2, Code: "write", Description: "write"}
	audit := model.Permission{ID: 3, Code: "audit", Description: "audit"}
	user := &model.User{
		Username: "bob",
		Password: utils.MD5("secret1"),
		Roles: []model.Role{
			{ID: 1, Name: "editor", Permissions: []model.Permission{read, write}},
			{ID: 2, Name: "auditor", Permissions: []model.Permission{read, audit}},
		},
	}
	require.NoError(t, f.repo.SaveUsers([]*model.User{user}))

	vo, err := f.svc.Login("bob", "secret1", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"editor", "auditor"}, vo.UserInfo.Roles)
	// First occurrence across roles, each code at most once.
	assert.Equal(t, []string{"read", "write", "audit"}, vo.UserInfo.Permissions)
}

func TestFindUserByID(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.InitData())

	lisi, err := f.repo.FindByUsername("lisi")
	require.NoError(t, err)
	require.NotNil(t, lisi)

	view, err := f.svc.FindUserByID(lisi.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "lisi", view.Username)
	assert.False(t, view.IsAdmin)
	assert.Equal(t, []string{"普通用户"}, view.Roles)
	assert.Equal(t, []string{"ccc"}, view.Permissions)

	_, err = f.svc.FindUserByID(99999, false)
	assert.ErrorIs(t, err, ErrUserNotFound)

	// Wrong partition behaves like a missing user.
	_, err = f.svc.FindUserByID(lisi.ID, true)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestPasswordsAreStoredHashed(t *testing.T) {
	f := newFixture(t)
	code := f.issue(t, "a@b.com")

	_, err := f.svc.Register(RegisterInput{
		Username: "alice", Password: "secret1", NickName: "Alice",
		Email: "a@b.com", Captcha: code,
	})
	require.NoError(t, err)

	stored, err := f.repo.FindByUsername("alice")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, utils.MD5("secret1"), stored.Password)
	assert.NotEqual(t, "secret1", stored.Password)
}
