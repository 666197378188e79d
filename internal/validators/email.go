// Package validators reúne checagens de contato usadas no cadastro.
package validators

import (
	"context"
	"net"
	"net/mail"
	"strings"
	"time"
)

// lookupTimeout limita o DNS no caminho do cadastro.
const lookupTimeout = 3 * time.Second

var resolver = net.DefaultResolver

// IsEmailDomainValid aceita o e-mail quando o domínio tem MX ou, na falta
// dele, algum endereço IP.
func IsEmailDomainValid(email string) bool {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return false
	}
	at := strings.LastIndex(addr.Address, "@")
	if at < 0 || at == len(addr.Address)-1 {
		return false
	}
	domain := addr.Address[at+1:]

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	if mx, err := resolver.LookupMX(ctx, domain); err == nil && len(mx) > 0 {
		return true
	}
	ips, err := resolver.LookupIPAddr(ctx, domain)
	return err == nil && len(ips) > 0
}

// NormalizePhone reduz o telefone aos dígitos, sem o DDI 55, para que
// "(11) 98888-7777" e "+55 11 988887777" sejam o mesmo cliente.
// Devolve vazio quando não sobra um número plausível (10 ou 11 dígitos).
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if len(digits) > 11 && strings.HasPrefix(digits, "55") {
		digits = digits[2:]
	}
	if len(digits) != 10 && len(digits) != 11 {
		return ""
	}
	return digits
}
