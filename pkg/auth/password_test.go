package auth

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	ok, err := VerifyPassword("secret123", hash)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if !ok {
		t.Error("правильный пароль должен проходить проверку")
	}

	ok, err = VerifyPassword("wrong", hash)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if ok {
		t.Error("неправильный пароль не должен проходить проверку")
	}
}

func TestHashPasswordUniqueSalt(t *testing.T) {
	first, err := HashPassword("secret123")
	if err != nil {
		t.Fatal(err)
	}
	second, err := HashPassword("secret123")
	if err != nil {
		t.Fatal(err)
	}

	if first == second {
		t.Error("хеши одного пароля должны отличаться за счет соли")
	}
}

func TestVerifyPasswordInvalidHash(t *testing.T) {
	if _, err := VerifyPassword("secret123", "не хеш"); err == nil {
		t.Error("ожидалась ошибка для некорректного хеша")
	}
}

func TestGenerateRandomToken(t *testing.T) {
	first, err := GenerateRandomToken(32)
	if err != nil {
		t.Fatal(err)
	}
	second, err := GenerateRandomToken(32)
	if err != nil {
		t.Fatal(err)
	}

	if first == "" || first == second {
		t.Error("токены должны быть непустыми и уникальными")
	}
}
