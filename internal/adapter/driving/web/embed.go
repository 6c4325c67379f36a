package web

import "embed"

// StaticFS holds the embedded static assets (the site stylesheet).
//
//go:embed static/*
var StaticFS embed.FS

const siteStylesheet = "static/css/site.css"
