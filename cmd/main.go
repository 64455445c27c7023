package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	v1 "userhub/api/v1"
	"userhub/config"
	"userhub/dao"
	"userhub/internal/captcha"
	"userhub/internal/mail"
	myvalidator "userhub/internal/validator"
	"userhub/middleware"
	"userhub/model"
	"userhub/service"
)

func main() {
	// 初始化配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "../"
	}
	config.InitConfig(configPath)
	config.InitRedis()

	// 初始化数据库
	db, err := gorm.Open(mysql.Open(config.GlobalConfig.MySQL.DSN), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	// 自动迁移
	if err := db.AutoMigrate(&model.User{}, &model.Role{}, &model.Permission{}); err != nil {
		panic(err)
	}

	// 初始化 DAO 和 Service
	userDAO := dao.NewUserDAO(db)
	captchaStore := captcha.NewStore(config.RedisClient)
	mailer := mail.NewSMTPSender(config.GlobalConfig.Email)
	userService := service.NewUserService(userDAO, captchaStore, mailer)
	userAPI := v1.NewUserAPI(userService)

	// 初始化路由
	r := gin.Default()
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 注册自定义校验器
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("captcha", myvalidator.IsCaptchaCode); err != nil {
			panic(err)
		}
	}

	// 用户路由
	user := r.Group("/user")
	{
		user.POST("/register", userAPI.Register)
		user.GET("/register-captcha", userAPI.Captcha)
		user.POST("/login", userAPI.Login)
		user.POST("/admin/login", userAPI.AdminLogin)
		user.GET("/refresh", userAPI.Refresh)
		user.GET("/init-data", userAPI.InitData)
	}

	// 演示路由：aaa 开放，bbb 需要登录，ccc/ddd 需要对应权限
	r.GET("/aaa", func(c *gin.Context) {
		c.String(http.StatusOK, "aaa")
	})
	r.GET("/bbb", middleware.RequireLogin(), func(c *gin.Context) {
		c.String(http.StatusOK, "bbb")
	})
	r.GET("/ccc", middleware.RequireLogin(), middleware.RequirePermission("ccc"), func(c *gin.Context) {
		c.String(http.StatusOK, "ccc")
	})
	r.GET("/ddd", middleware.RequireLogin(), middleware.RequirePermission("ddd"), func(c *gin.Context) {
		c.String(http.StatusOK, "ddd")
	})

	// 启动服务
	if err := r.Run(config.GlobalConfig.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
