package provider

import "golang.org/x/oauth2"

func oauth2Endpoint(base string) oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:  base + "/auth",
		TokenURL: base + "/token",
	}
}
