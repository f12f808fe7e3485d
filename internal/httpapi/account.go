package httpapi

import (
	"github.com/gin-gonic/gin"

	"storefront-backend/internal/middleware"
	"storefront-backend/internal/service"
)

func (h *handlers) addAccount(c *gin.Context, in *service.CreateAccountInput) (result, error) {
	acct, err := h.svc.Accounts.Create(c.Request.Context(), *in)
	if err != nil {
		return result{}, err
	}
	return result{message: "Account created successfully.", data: acct}, nil
}

func (h *handlers) editAccount(c *gin.Context, in *service.EditAccountInput) (result, error) {
	acct, err := h.svc.Accounts.Update(c.Request.Context(), middleware.Claims(c).ID, *in)
	if err != nil {
		return result{}, err
	}
	return result{message: "Account updated successfully.", data: acct}, nil
}

func (h *handlers) deleteAccount(c *gin.Context, _ *none) (result, error) {
	if err := h.svc.Accounts.Delete(c.Request.Context(), middleware.Claims(c)); err != nil {
		return result{}, err
	}
	return result{message: "Account deleted successfully."}, nil
}

func (h *handlers) accountDetails(c *gin.Context, _ *none) (result, error) {
	acct, err := h.svc.Accounts.Details(c.Request.Context(), middleware.Claims(c).ID)
	if err != nil {
		return result{}, err
	}
	return result{message: "Account details fetched successfully.", data: acct}, nil
}

func (h *handlers) accountLogin(c *gin.Context, in *service.LoginInput) (result, error) {
	login, err := h.svc.Auth.LoginAccount(c.Request.Context(), *in)
	if err != nil {
		return result{}, err
	}
	return loginResult(login), nil
}

func (h *handlers) resetAccountPassword(c *gin.Context, in *service.ResetPasswordInput) (result, error) {
	if err := h.svc.Accounts.ResetPassword(c.Request.Context(), *in); err != nil {
		return result{}, err
	}
	return result{message: "Password reset successfully."}, nil
}

func (h *handlers) logout(c *gin.Context, _ *none) (result, error) {
	if err := h.svc.Auth.Logout(c.Request.Context(), middleware.Claims(c)); err != nil {
		return result{}, err
	}
	return result{message: "Logout successful."}, nil
}

func (h *handlers) addSeller(c *gin.Context, in *service.CreateSellerInput) (result, error) {
	seller, err := h.svc.Sellers.Create(c.Request.Context(), *in)
	if err != nil {
		return result{}, err
	}
	return result{message: "Seller created successfully.", data: seller}, nil
}

func (h *handlers) editSeller(c *gin.Context, in *service.EditSellerInput) (result, error) {
	seller, err := h.svc.Sellers.Update(c.Request.Context(), middleware.Claims(c).ID, *in)
	if err != nil {
		return result{}, err
	}
	return result{message: "Seller updated successfully.", data: seller}, nil
}

func (h *handlers) deleteSeller(c *gin.Context, _ *none) (result, error) {
	if err := h.svc.Sellers.Delete(c.Request.Context(), middleware.Claims(c)); err != nil {
		return result{}, err
	}
	return result{message: "Seller marked as deleted successfully."}, nil
}

func (h *handlers) sellerDetails(c *gin.Context, _ *none) (result, error) {
	seller, err := h.svc.Sellers.Details(c.Request.Context(), middleware.Claims(c).ID)
	if err != nil {
		return result{}, err
	}
	return result{message: "Seller Account details fetched successfully.", data: seller}, nil
}

func (h *handlers) sellerLogin(c *gin.Context, in *service.LoginInput) (result, error) {
	login, err := h.svc.Auth.LoginSeller(c.Request.Context(), *in)
	if err != nil {
		return result{}, err
	}
	return loginResult(login), nil
}

func (h *handlers) resetSellerPassword(c *gin.Context, in *service.ResetPasswordInput) (result, error) {
	if err := h.svc.Sellers.ResetPassword(c.Request.Context(), *in); err != nil {
		return result{}, err
	}
	return result{message: "Password reset successfully."}, nil
}

func loginResult(login service.Login) result {
	return result{raw: gin.H{
		"message":   "Login successful.",
		"token":     login.Token,
		"expiresAt": login.ExpiresAt,
		"data":      login.Principal,
	}}
}
