// Package main Datalake Server API
//
//	@title						Datalake Server API
//	@version					1.0
//	@description				Multi-tenant backend for users, files, customers, orders, products and payments.
//
//	@license.name				Proprietary
//
//	@host						localhost:5001
//	@BasePath					/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"
//
//	@tag.name					Users
//	@tag.description			Accounts, login and roles
//
//	@tag.name					Files
//	@tag.description			Owner-scoped file uploads
//
//	@tag.name					Customers
//	@tag.description			Customer profiles
//
//	@tag.name					Orders
//	@tag.description			Order lifecycle
//
//	@tag.name					Products
//	@tag.description			Product catalogue and inventory
//
//	@tag.name					Payments
//	@tag.description			Payments, statistics and reference data
//
//	@tag.name					Refunds
//	@tag.description			Payment refunds
//
//	@tag.name					Webhooks
//	@tag.description			Payment provider notifications
package main
