package naming

import (
	"testing"
)

func TestRemoveAccents(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"hello", "hello"},
		{"cobrança", "cobranca"},
		{"negociação", "negociacao"},
		{"café", "cafe"},
		{"José", "Jose"},
		{"São Paulo", "Sao Paulo"},
		{"résumé", "resume"},
		{"naïve", "naive"},
		{"piñata", "pinata"},
	}

	for _, test := range tests {
		result := RemoveAccents(test.input)
		if result != test.expected {
			t.Errorf("RemoveAccents(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestClassName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"hello", "Hello"},
		{"helloWorld", "HelloWorld"},
		{"user_profile", "UserProfile"},
		{"user-profile", "UserProfile"},
		{"USER_PROFILE", "UserProfile"},
		{"APIResponse", "ApiResponse"},
		{"XMLHttpRequest", "XmlHttpRequest"},
		{"createUsersWithListInput", "CreateUsersWithListInput"},
		{"hello world", "HelloWorld"},
		{"user.profile", "UserProfile"},
		// Already-normalized input stays put
		{"UserProfile", "UserProfile"},
		// Accent removal
		{"cobrança", "Cobranca"},
		{"negociação", "Negociacao"},
		{"transferências", "Transferencias"},
	}

	for _, test := range tests {
		result := ClassName(test.input)
		if result != test.expected {
			t.Errorf("ClassName(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestPropertyName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "value"},
		{"---", "value"},
		{"hello", "hello"},
		{"Hello", "hello"},
		{"helloWorld", "helloWorld"},
		{"hello_world", "helloWorld"},
		{"hello-world", "helloWorld"},
		{"HELLO_WORLD", "helloWorld"},
		{"next_cursor", "nextCursor"},
		// Reserved words get a trailing underscore
		{"class", "class_"},
		{"enum", "enum_"},
		{"default", "default_"},
		{"required", "required_"},
		{"is", "is_"},
		// Leading digits get a prefix
		{"123abc", "n123abc"},
		{"2fa_enabled", "n2faEnabled"},
		// Dollar-prefixed keys keep the dollar sign
		{"$set", "$set"},
		{"$group_id", "$groupId"},
		// Idempotent on normalized input
		{"xApiKey", "xApiKey"},
		{"class_", "class_"},
		// Accent removal
		{"cobrança", "cobranca"},
		{"Negociação", "negociacao"},
	}

	for _, test := range tests {
		result := PropertyName(test.input)
		if result != test.expected {
			t.Errorf("PropertyName(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestHeaderPropertyName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"x-api-key", "xApiKey"},
		{"X-Api-Key", "xApiKey"},
		{"X-API-Key", "xApiKey"},
		{"x-company-id", "xCompanyId"},
		{"x-user-id", "xUserId"},
		{"If-None-Match", "ifNoneMatch"},
		{"ETag", "eTag"},
	}

	for _, test := range tests {
		result := HeaderPropertyName(test.input)
		if result != test.expected {
			t.Errorf("HeaderPropertyName(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"Pet", "pet"},
		{"helloWorld", "hello_world"},
		{"getUserById", "get_user_by_id"},
		{"XMLParser", "xml_parser"},
		{"HTTPSConnection", "https_connection"},
		{"ScheduleViewResponseV2Dto", "schedule_view_response_v2_dto"},
		{"hello-world", "hello_world"},
		{"hello world", "hello_world"},
		{"HELLO_WORLD", "hello_world"},
		// Idempotent on normalized input
		{"schedule_view_response_v2_dto", "schedule_view_response_v2_dto"},
		// Accent removal
		{"notificações", "notificacoes"},
	}

	for _, test := range tests {
		result := FileName(test.input)
		if result != test.expected {
			t.Errorf("FileName(%q) = %q, expected %q", test.input, result, test.expected)
		}
	}
}

func TestSplitCamelCase(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"", nil},
		{"hello", []string{"hello"}},
		{"helloWorld", []string{"hello", "World"}},
		{"getUserById", []string{"get", "User", "By", "Id"}},
		{"listUserResources", []string{"list", "User", "Resources"}},
		{"XMLHttpRequest", []string{"XML", "Http", "Request"}},
	}

	for _, test := range tests {
		result := SplitCamelCase(test.input)
		if len(result) != len(test.expected) {
			t.Errorf("SplitCamelCase(%q) = %v, expected %v", test.input, result, test.expected)
			continue
		}
		for i, part := range result {
			if part != test.expected[i] {
				t.Errorf("SplitCamelCase(%q) = %v, expected %v", test.input, result, test.expected)
				break
			}
		}
	}
}
