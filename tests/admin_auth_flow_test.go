package tests

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackvolt/wattwise/app/dto"
	"github.com/stackvolt/wattwise/app/services"
	businessflow "github.com/stackvolt/wattwise/business_flow"
	"github.com/stackvolt/wattwise/repository"
	testingutil "github.com/stackvolt/wattwise/testing"
	"github.com/stackvolt/wattwise/utils"
)

func newTestTokenService(t *testing.T) services.TokenService {
	t.Helper()
	svc, err := services.NewTokenService(
		utils.AccessTokenTTL,
		utils.RefreshTokenTTL,
		"wattwise",
		"wattwise-admin",
		false,
		"",
		"",
		"test-secret-key-for-admin-tokens-0123456789",
	)
	require.NoError(t, err)
	return svc
}

func TestAdminAuthFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		adminRepo := repository.NewAdminRepository(testDB.DB)
		tokenService := newTestTokenService(t)
		captchaSvc := services.NewMockCaptchaService()
		flow := businessflow.NewAdminAuthFlow(adminRepo, tokenService, captchaSvc)

		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()
		metadata := testClientMetadata()

		admin, err := fixtures.CreateTestAdmin("wattwise-admin", "VeryStrongPass1!")
		require.NoError(t, err)

		initCaptcha := func(t *testing.T) string {
			resp, err := flow.InitCaptcha(ctx)
			require.NoError(t, err)
			require.NotEmpty(t, resp.ChallengeID)
			return resp.ChallengeID
		}

		t.Run("InitCaptcha", func(t *testing.T) {
			resp, err := flow.InitCaptcha(ctx)
			require.NoError(t, err)
			assert.NotEmpty(t, resp.ChallengeID)
			assert.NotEmpty(t, resp.MasterImageBase64)
			assert.NotEmpty(t, resp.ThumbImageBase64)
		})

		t.Run("LoginSuccess", func(t *testing.T) {
			resp, err := flow.Login(ctx, &dto.AdminLoginRequest{
				ChallengeID: initCaptcha(t),
				Username:    "wattwise-admin",
				Password:    "VeryStrongPass1!",
				UserAngle:   services.MockCaptchaAngle,
			}, metadata)
			require.NoError(t, err)
			assert.Equal(t, admin.Username, resp.Admin.Username)
			assert.NotEmpty(t, resp.Session.AccessToken)
			assert.NotEmpty(t, resp.Session.RefreshToken)
			assert.Equal(t, "Bearer", resp.Session.TokenType)

			claims, err := tokenService.ValidateAdminToken(resp.Session.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, admin.ID, claims.AdminID)

			// Successful login stamps last_login_at.
			reloaded, err := adminRepo.ByUsername(ctx, "wattwise-admin")
			require.NoError(t, err)
			require.NotNil(t, reloaded.LastLoginAt)
			assert.WithinDuration(t, utils.UTCNow(), *reloaded.LastLoginAt, time.Minute)
		})

		t.Run("LoginRejectsWrongAngle", func(t *testing.T) {
			_, err := flow.Login(ctx, &dto.AdminLoginRequest{
				ChallengeID: initCaptcha(t),
				Username:    "wattwise-admin",
				Password:    "VeryStrongPass1!",
				UserAngle:   services.MockCaptchaAngle + 45,
			}, metadata)
			assertBusinessCode(t, err, "CAPTCHA_INVALID")
		})

		t.Run("LoginRejectsMissingChallenge", func(t *testing.T) {
			_, err := flow.Login(ctx, &dto.AdminLoginRequest{
				Username:  "wattwise-admin",
				Password:  "VeryStrongPass1!",
				UserAngle: services.MockCaptchaAngle,
			}, metadata)
			assertBusinessCode(t, err, "CAPTCHA_INVALID")
		})

		t.Run("LoginUnknownAdmin", func(t *testing.T) {
			_, err := flow.Login(ctx, &dto.AdminLoginRequest{
				ChallengeID: initCaptcha(t),
				Username:    "nobody",
				Password:    "VeryStrongPass1!",
				UserAngle:   services.MockCaptchaAngle,
			}, metadata)
			assertBusinessCode(t, err, "ADMIN_NOT_FOUND")
		})

		t.Run("LoginWrongPassword", func(t *testing.T) {
			_, err := flow.Login(ctx, &dto.AdminLoginRequest{
				ChallengeID: initCaptcha(t),
				Username:    "wattwise-admin",
				Password:    "WrongPassword1!",
				UserAngle:   services.MockCaptchaAngle,
			}, metadata)
			assertBusinessCode(t, err, "ADMIN_INCORRECT_PASSWORD")
		})

		t.Run("LoginInactiveAdmin", func(t *testing.T) {
			inactive, err := fixtures.CreateTestAdmin("former-admin", "VeryStrongPass1!")
			require.NoError(t, err)
			inactive.IsActive = utils.ToPtr(false)
			require.NoError(t, testDB.DB.Save(inactive).Error)

			_, err = flow.Login(ctx, &dto.AdminLoginRequest{
				ChallengeID: initCaptcha(t),
				Username:    "former-admin",
				Password:    "VeryStrongPass1!",
				UserAngle:   services.MockCaptchaAngle,
			}, metadata)
			assertBusinessCode(t, err, "ADMIN_INACTIVE")
		})

		return nil
	})
	require.NoError(t, err)
}

func TestTokenService(t *testing.T) {
	svc := newTestTokenService(t)

	t.Run("GenerateAndValidate", func(t *testing.T) {
		access, refresh, err := svc.GenerateAdminTokens(7)
		require.NoError(t, err)
		require.NotEmpty(t, access)
		require.NotEmpty(t, refresh)
		assert.NotEqual(t, access, refresh)

		claims, err := svc.ValidateAdminToken(access)
		require.NoError(t, err)
		assert.Equal(t, uint(7), claims.AdminID)
		assert.True(t, claims.ExpiresAt.After(utils.UTCNow()))
	})

	t.Run("RejectsGarbage", func(t *testing.T) {
		_, err := svc.ValidateAdminToken("not.a.token")
		assert.Error(t, err)
	})

	t.Run("RejectsForeignSecret", func(t *testing.T) {
		other, err := services.NewTokenService(
			utils.AccessTokenTTL,
			utils.RefreshTokenTTL,
			"wattwise",
			"wattwise-admin",
			false,
			"",
			"",
			"another-secret-key-for-admin-tokens-987654",
		)
		require.NoError(t, err)

		access, _, err := other.GenerateAdminTokens(7)
		require.NoError(t, err)

		_, err = svc.ValidateAdminToken(access)
		assert.Error(t, err)
	})
}
