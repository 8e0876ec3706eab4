package http

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"
)

// MaxRedirects は公開アドレス用クライアントが追従するリダイレクトの上限です。
const MaxRedirects = 5

// ErrBlockedAddress は接続先が公開アドレスでない場合に返されます。
var ErrBlockedAddress = errors.New("destination address is not public")

// blockedPrefixes はnetip.Addrの判定メソッドで拾えない予約済み帯域です。
var blockedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"), // CGNAT
	netip.MustParsePrefix("192.0.0.0/24"),
	netip.MustParsePrefix("192.0.2.0/24"),
	netip.MustParsePrefix("198.18.0.0/15"),
	netip.MustParsePrefix("198.51.100.0/24"),
	netip.MustParsePrefix("203.0.113.0/24"),
	netip.MustParsePrefix("240.0.0.0/4"),
	netip.MustParsePrefix("64:ff9b::/96"),
	netip.MustParsePrefix("2001:db8::/32"),
}

// NewPublicClient はユーザーが指定したURLを取得するためのクライアントを作成します。
//
// 名前解決後のIPアドレスを接続直前に検査し、ループバック・プライベート・リンクローカル
// などへの接続をErrBlockedAddressで拒否します。リダイレクト先やDNSの再バインドも
// 同じ検査を通ります。プロキシは使用しません。
func NewPublicClient(timeout time.Duration, userAgent string) *http.Client {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	transport := newTransport()
	transport.Proxy = nil
	transport.DialContext = (&net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   rejectNonPublic,
	}).DialContext
	return &http.Client{
		Timeout:       timeout,
		Transport:     &userAgentTransport{base: transport, userAgent: userAgent},
		CheckRedirect: limitRedirects,
	}
}

// IsPublicAddr はインターネット上で到達可能なユニキャストアドレスかどうかを返します。
func IsPublicAddr(ip netip.Addr) bool {
	ip = ip.Unmap().WithZone("")
	if !ip.IsValid() ||
		ip.IsUnspecified() ||
		ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() ||
		ip.IsMulticast() {
		return false
	}
	for _, p := range blockedPrefixes {
		if p.Contains(ip) {
			return false
		}
	}
	return true
}

// rejectNonPublic はnet.Dialer.Controlとして、解決済みのアドレスを検査します。
func rejectNonPublic(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, address)
	}
	ip, err := netip.ParseAddr(host)
	if err != nil || !IsPublicAddr(ip) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, host)
	}
	return nil
}

func limitRedirects(req *http.Request, via []*http.Request) error {
	if len(via) >= MaxRedirects {
		return fmt.Errorf("stopped after %d redirects", MaxRedirects)
	}
	return nil
}
