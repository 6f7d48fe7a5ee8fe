package service

import "fmt"

func registrationCodeTemplate(code, appName string) (string, string) {
	subject := fmt.Sprintf("Confirm your %s registration", appName)
	body := fmt.Sprintf(`Your registration confirmation code is:

%s

Enter it to verify your email address and activate your account.

The code expires shortly and can only be used once.

If you didn't create an account, ignore this email.

Best,
The %s Team`, code, appName)

	return subject, body
}

func loginCodeTemplate(code, appName string) (string, string) {
	subject := fmt.Sprintf("Your %s sign-in code", appName)
	body := fmt.Sprintf(`Your sign-in confirmation code is:

%s

Enter it to finish signing in.

The code expires shortly and can only be used once.

If you didn't try to sign in, someone may know your password. Consider changing it.

Best,
The %s Team`, code, appName)

	return subject, body
}
