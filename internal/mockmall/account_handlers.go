package mockmall

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type registerBody struct {
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Avatar    string `json:"avatar"`
	Telephone string `json:"telephone"`
	Email     string `json:"email"`
	Location  string `json:"location"`
	Role      string `json:"role"`
}

type accountView struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar"`
	Role      string `json:"role"`
	Telephone string `json:"telephone"`
	Email     string `json:"email"`
	Location  string `json:"location"`
}

func viewOf(a *Account) accountView {
	return accountView{
		ID:        int(a.ID),
		Username:  a.Username,
		Name:      a.Name,
		Avatar:    a.Avatar,
		Role:      a.Role,
		Telephone: a.Telephone,
		Email:     a.Email,
		Location:  a.Location,
	}
}

func (s *Server) register(c *gin.Context) {
	var body registerBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	var existing Account
	if err := s.db.Where("username = ?", body.Username).First(&existing).Error; err == nil {
		fail(c, http.StatusBadRequest, "username already taken")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	role := body.Role
	if role == "" {
		role = "user"
	}

	acct := Account{
		Username:  body.Username,
		Password:  string(hashed),
		Name:      body.Name,
		Avatar:    body.Avatar,
		Role:      role,
		Telephone: body.Telephone,
		Email:     body.Email,
		Location:  body.Location,
	}
	if err := s.db.Create(&acct).Error; err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	ok(c, "注册成功")
}

// login reads the credentials from query parameters, which is what the
// production contract does, and returns the session token as the payload.
func (s *Server) login(c *gin.Context) {
	username := c.Query("username")
	password := c.Query("password")
	if username == "" || password == "" {
		fail(c, http.StatusBadRequest, "username and password are required")
		return
	}

	var acct Account
	if err := s.db.Where("username = ?", username).First(&acct).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusUnauthorized, "invalid credentials")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(acct.Password), []byte(password)) != nil {
		fail(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := s.generateToken(acct.ID, acct.Role)
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	ok(c, token)
}

func (s *Server) getAccount(c *gin.Context) {
	username := c.Param("username")

	var acct Account
	if err := s.db.Where("username = ?", username).First(&acct).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "account not found")
			return
		}
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	ok(c, viewOf(&acct))
}

type updateAccountBody struct {
	Username  string `json:"username" binding:"required"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar"`
	Telephone string `json:"telephone"`
	Email     string `json:"email"`
	Location  string `json:"location"`
}

func (s *Server) updateAccount(c *gin.Context) {
	var body updateAccountBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	acct := currentAccount(c)
	if acct.Username != body.Username {
		fail(c, http.StatusForbidden, "cannot update another account")
		return
	}

	updates := map[string]interface{}{}
	if body.Name != "" {
		updates["name"] = body.Name
	}
	if body.Avatar != "" {
		updates["avatar"] = body.Avatar
	}
	if body.Telephone != "" {
		updates["telephone"] = body.Telephone
	}
	if body.Email != "" {
		updates["email"] = body.Email
	}
	if body.Location != "" {
		updates["location"] = body.Location
	}

	if len(updates) > 0 {
		if err := s.db.Model(&Account{}).Where("id = ?", acct.ID).Updates(updates).Error; err != nil {
			fail(c, http.StatusInternalServerError, err.Error())
			return
		}
	}

	ok(c, "更新成功")
}

func parseUint(s string) (uint, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	return uint(v), err
}
