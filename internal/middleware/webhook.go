package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/gofiber/fiber/v2"
)

const SignatureHeader = "X-Webhook-Signature"

// VerifyWebhookSignature authenticates provider callbacks: the header must
// carry a hex HMAC-SHA256 of the raw request body under the shared secret.
func VerifyWebhookSignature(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		signature := c.Get(SignatureHeader)
		if signature == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"code":    "UNAUTHORIZED",
				"message": "Missing webhook signature",
			})
		}

		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(c.Body())
		expected := hex.EncodeToString(mac.Sum(nil))

		if !hmac.Equal([]byte(expected), []byte(signature)) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"code":    "UNAUTHORIZED",
				"message": "Invalid webhook signature",
			})
		}

		return c.Next()
	}
}
