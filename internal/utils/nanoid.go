package utils

import (
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const licenseKeyAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func GenerateNanoID() (string, error) {
	return gonanoid.New()
}

// GenerateLicenseKey собирает ключ вида "PRODUCT-NAME-XXXX-XXXX-XXXX"
// из имени товара и случайного суффикса.
func GenerateLicenseKey(productName string) (string, error) {
	suffix, err := gonanoid.Generate(licenseKeyAlphabet, 12)
	if err != nil {
		return "", err
	}
	prefix := strings.ToUpper(strings.Join(strings.Fields(productName), "-"))
	return prefix + "-" + suffix[0:4] + "-" + suffix[4:8] + "-" + suffix[8:12], nil
}
