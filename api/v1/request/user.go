package request

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3"`
	Password string `json:"password" binding:"required,min=6"`
	NickName string `json:"nickName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Captcha  string `json:"captcha" binding:"required,captcha"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
