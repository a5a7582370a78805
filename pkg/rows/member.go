package rows

import (
	"fmt"
	"html"
	"strings"

	"github.com/alexmglover/Deep/pkg/core"
)

// upload describes one kind of member media and the attributes it is
// built from.
type upload struct {
	flag, url, file     string
	srcWidth, srcHeight string
	width, height       string
}

var uploads = []upload{
	{"avatar", "avatar_url", "avatar_filename", "avatar_width", "avatar_height", "avatar_image_width", "avatar_image_height"},
	{"photo", "photo_url", "photo_filename", "photo_width", "photo_height", "photo_image_width", "photo_image_height"},
	{"signature_image", "signature_image_url", "sig_img_filename", "sig_img_width", "sig_img_height", "signature_image_width", "signature_image_height"},
}

// memberData adds the author of rec to row.
func (m *materializer) memberData(row *core.Row, a *core.Author, p core.Prefix) {
	set := func(key string, v any) {
		if !row.Has(p.Key(key)) {
			row.Set(p.Key(key), v)
		}
	}
	text := func(name string) string {
		return strings.TrimSpace(core.Stringify(a.Attrs.Value(name)))
	}

	for k, v := range a.Attrs.All() {
		set(k, core.Stringify(v))
	}

	author := text("screen_name")
	if author == "" {
		author = text("username")
	}
	set("author", author)

	bases := []string{
		m.rc.Settings.Uploads.AvatarURL,
		m.rc.Settings.Uploads.PhotoURL,
		m.rc.Settings.Uploads.SignatureURL,
	}
	for i, u := range uploads {
		file := text(u.file)
		url := ""
		if file != "" {
			url = strings.TrimRight(bases[i], "/") + "/" + file
		}
		set(u.url, url)
		set(u.width, text(u.srcWidth))
		set(u.height, text(u.srcHeight))
		set(u.flag, file != "")
	}

	href := text("url")
	if href == "" {
		if email := text("email"); email != "" {
			href = "mailto:" + email
		}
	}
	set("url_or_email", strings.TrimPrefix(href, "mailto:"))
	if href == "" {
		set("url_or_email_as_author", html.EscapeString(author))
		set("url_or_email_as_link", "")
		return
	}
	link := strings.TrimPrefix(href, "mailto:")
	set("url_or_email_as_author", anchor(href, author))
	set("url_or_email_as_link", anchor(href, link))
}

func anchor(href, text string) string {
	return fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(href), html.EscapeString(text))
}
